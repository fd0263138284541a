package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// Repository exposes the read side of the identity collaborator.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
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

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads the users with the given ids, in no particular order.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// ListActiveByRole returns active users holding role, oldest first.
func (r *Repository) ListActiveByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
