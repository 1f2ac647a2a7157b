package enums

import "fmt"

// RejectionReason is the closed set of reasons an agent may cite when
// rejecting a contribution. The column is textual but only these values
// are accepted.
type RejectionReason string

const (
	RejectionReasonQualityIssue      RejectionReason = "quality_issue"
	RejectionReasonDamaged           RejectionReason = "damaged"
	RejectionReasonAlreadyRented     RejectionReason = "already_rented_elsewhere"
	RejectionReasonIncompleteSet     RejectionReason = "incomplete_set"
	RejectionReasonOwnerUnavailable  RejectionReason = "owner_unavailable"
	RejectionReasonIncorrectCategory RejectionReason = "incorrect_category"
)

var validRejectionReasons = []RejectionReason{
	RejectionReasonQualityIssue,
	RejectionReasonDamaged,
	RejectionReasonAlreadyRented,
	RejectionReasonIncompleteSet,
	RejectionReasonOwnerUnavailable,
	RejectionReasonIncorrectCategory,
}

// String implements fmt.Stringer.
func (r RejectionReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RejectionReason.
func (r RejectionReason) IsValid() bool {
	for _, candidate := range validRejectionReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRejectionReason converts raw input into a RejectionReason.
func ParseRejectionReason(value string) (RejectionReason, error) {
	for _, candidate := range validRejectionReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rejection reason %q", value)
}

// RejectionReasons returns the accepted values in a stable order.
func RejectionReasons() []RejectionReason {
	reasons := make([]RejectionReason, len(validRejectionReasons))
	copy(reasons, validRejectionReasons)
	return reasons
}
