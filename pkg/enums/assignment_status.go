package enums

import "fmt"

// AssignmentStatus tracks whether an order is offered to or held by a dealer.
type AssignmentStatus string

const (
	AssignmentStatusUnassigned AssignmentStatus = "unassigned"
	AssignmentStatusAvailable  AssignmentStatus = "available"
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusExpired    AssignmentStatus = "expired"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusUnassigned,
	AssignmentStatusAvailable,
	AssignmentStatusAssigned,
	AssignmentStatusExpired,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts raw input into a AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
