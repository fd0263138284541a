package enums

import "fmt"

// UserRole is the account role carried in access tokens.
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleDealer UserRole = "dealer"
	UserRoleAdmin  UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleClient,
	UserRoleDealer,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
