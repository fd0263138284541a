package dealers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
)

// Repository persists order_dealer_candidates rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a candidate repository bound to the provided DB.
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

// InsertCandidates writes one row per dealer, ignoring pairs that already exist.
func (r *Repository) InsertCandidates(ctx context.Context, rows []models.DealerCandidate) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "dealer_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.DealerCandidate, error) {
	var rows []models.DealerCandidate
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("match_score DESC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteByOrder removes every candidate row of the order.
func (r *Repository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.DealerCandidate{})
	return res.RowsAffected, res.Error
}
