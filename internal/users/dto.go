package users

import (
	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
)

// UserSummary is the public shape used when one user is shown to another
// (dealer to customer, customer to dealer).
type UserSummary struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Phone    *string        `json:"phone,omitempty"`
	Role     enums.UserRole `json:"role"`
	Location string         `json:"location,omitempty"`
}

func FromModel(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Phone:    u.Phone,
		Role:     u.Role,
		Location: u.Location.String(),
	}
}
