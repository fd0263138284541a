package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// DealerCandidate records that an order was offered to a dealer.
type DealerCandidate struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	DealerID   uuid.UUID             `gorm:"column:dealer_id;type:uuid;not null"`
	Status     enums.CandidateStatus `gorm:"column:status;type:text;not null;default:'available'"`
	MatchScore int                   `gorm:"column:match_score;not null"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (DealerCandidate) TableName() string { return "order_dealer_candidates" }
