package enums

import "fmt"

// CandidateStatus is the offer state of a dealer candidate row.
type CandidateStatus string

const (
	CandidateStatusAvailable CandidateStatus = "available"
)

var validCandidateStatuses = []CandidateStatus{
	CandidateStatusAvailable,
}

// String implements fmt.Stringer.
func (c CandidateStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CandidateStatus.
func (c CandidateStatus) IsValid() bool {
	for _, candidate := range validCandidateStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCandidateStatus converts raw input into a CandidateStatus.
func ParseCandidateStatus(value string) (CandidateStatus, error) {
	for _, candidate := range validCandidateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid candidate status %q", value)
}
