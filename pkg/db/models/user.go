package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

// User is the identity record owned by the auth service; this backend reads
// role and location from it.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Phone     *string        `gorm:"column:phone"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'client'"`
	Location  types.Location `gorm:"column:location;type:text"`
	IsActive  bool           `gorm:"column:is_active;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
