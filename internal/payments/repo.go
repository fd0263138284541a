package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// Repository persists payment attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindForUpdate(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	FindOwnedForUpdate(ctx context.Context, customerID, paymentID uuid.UUID) (*models.Payment, error)
	LatestForOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Payment, error)
	ListAwaiting(ctx context.Context, limit int) ([]models.Payment, error)
	IncrementAttempts(ctx context.Context, paymentID uuid.UUID, now time.Time) error
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, from enums.PaymentStatus, updates map[string]any) (bool, error)
	SupersedePending(ctx context.Context, orderID uuid.UUID, reason string, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) locked(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// FindForUpdate loads the payment row, locking it on postgres.
func (r *repository) FindForUpdate(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.locked(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindOwnedForUpdate(ctx context.Context, customerID, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.locked(ctx).
		Where("id = ? AND customer_id = ?", paymentID, customerID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// LatestForOrder returns nil without error when the order has no payment.
func (r *repository) LatestForOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Order("id DESC").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListAwaiting returns payments still waiting for a code or an admin decision,
// oldest first.
func (r *repository) ListAwaiting(ctx context.Context, limit int) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.PaymentStatus{
			enums.PaymentStatusPendingPayment,
			enums.PaymentStatusSimulationPending,
		}).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) IncrementAttempts(ctx context.Context, paymentID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]any{
			"verification_attempts": gorm.Expr("verification_attempts + 1"),
			"updated_at":            now,
		}).Error
}

// UpdateStatus applies updates only while the payment still holds status from.
func (r *repository) UpdateStatus(ctx context.Context, paymentID uuid.UUID, from enums.PaymentStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SupersedePending fails every open simulation of the order so only the
// newest code can be verified.
func (r *repository) SupersedePending(ctx context.Context, orderID uuid.UUID, reason string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusSimulationPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     now,
		})
	return res.RowsAffected, res.Error
}
