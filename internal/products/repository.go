package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

// Repository wires together catalog reads and the stock mutations used by
// order placement and cancellation.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns active products newest first, one row past the limit so the
// caller can build the next cursor.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", like, like)
	}
	if filters.InStock != nil {
		if *filters.InStock {
			query = query.Where("stock > 0")
		} else {
			query = query.Where("stock <= 0")
		}
	}
	if filters.Size != "" {
		query = query.Where("size = ?", filters.Size)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

// DecrementStock takes qty units only when enough stock remains. It reports
// false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreStock returns qty units to the product.
func (r *Repository) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
