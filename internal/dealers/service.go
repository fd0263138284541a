package dealers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
)

// Service matches orders to dealers and records the offers.
type Service struct {
	users      *users.Repository
	candidates *Repository
	logg       *logger.Logger
}

// NewService wires the dealer directory and candidate store.
func NewService(usersRepo *users.Repository, candidates *Repository, logg *logger.Logger) (*Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if candidates == nil {
		return nil, fmt.Errorf("candidate repository required")
	}
	return &Service{users: usersRepo, candidates: candidates, logg: logg}, nil
}

// Match ranks active dealers against ward and inserts a candidate row per
// match. It must run inside the transaction that created the order.
func (s *Service) Match(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, ward string) ([]Match, error) {
	dealers, err := s.users.WithTx(tx).ListActiveByRole(ctx, enums.UserRoleDealer)
	if err != nil {
		return nil, fmt.Errorf("list dealers: %w", err)
	}
	matches := Rank(ward, dealers)
	if len(matches) == 0 {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_id": orderID.String(),
				"ward":     ward,
			}), "dealers.no_match")
		}
		return matches, nil
	}

	rows := make([]models.DealerCandidate, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, models.DealerCandidate{
			OrderID:    orderID,
			DealerID:   match.DealerID,
			Status:     enums.CandidateStatusAvailable,
			MatchScore: match.Score,
		})
	}
	if err := s.candidates.WithTx(tx).InsertCandidates(ctx, rows); err != nil {
		return nil, fmt.Errorf("insert candidates: %w", err)
	}
	return matches, nil
}

// Release drops the order's candidate rows once it is claimed, cancelled or
// expired.
func (s *Service) Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	removed, err := s.candidates.WithTx(tx).DeleteByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete candidates: %w", err)
	}
	return removed, nil
}
