package paymentmethods

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// Repository persists saved payment methods. Inactive rows are invisible to
// every read.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	FindDefault(ctx context.Context, userID uuid.UUID) (*models.PaymentMethod, error)
	FindOwned(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error)
	HasActiveOfType(ctx context.Context, userID uuid.UUID, methodType enums.PaymentMethodType) (bool, error)
	CountActive(ctx context.Context, userID uuid.UUID) (int64, error)
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	SetDefault(ctx context.Context, userID, methodID uuid.UUID) (bool, error)
	Create(ctx context.Context, method *models.PaymentMethod) error
	Deactivate(ctx context.Context, userID, methodID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment method repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) active(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_active = ?", userID, true)
}

func (r *repository) ListActive(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.active(ctx, userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&methods).Error
	return methods, err
}

// FindDefault returns nil without error when no default is set.
func (r *repository) FindDefault(ctx context.Context, userID uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.active(ctx, userID).
		Where("is_default = ?", true).
		First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *repository) FindOwned(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.active(ctx, userID).
		Where("id = ?", methodID).
		First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *repository) HasActiveOfType(ctx context.Context, userID uuid.UUID, methodType enums.PaymentMethodType) (bool, error) {
	var count int64
	err := r.active(ctx, userID).
		Where("type = ?", methodType).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountActive(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx, userID).Count(&count).Error
	return count, err
}

func (r *repository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (r *repository) SetDefault(ctx context.Context, userID, methodID uuid.UUID) (bool, error) {
	res := r.active(ctx, userID).
		Where("id = ?", methodID).
		Update("is_default", true)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) Create(ctx context.Context, method *models.PaymentMethod) error {
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(method).Error
}

// Deactivate soft deletes the method and drops its default flag.
func (r *repository) Deactivate(ctx context.Context, userID, methodID uuid.UUID) (bool, error) {
	res := r.active(ctx, userID).
		Where("id = ?", methodID).
		Updates(map[string]any{"is_active": false, "is_default": false})
	return res.RowsAffected == 1, res.Error
}
