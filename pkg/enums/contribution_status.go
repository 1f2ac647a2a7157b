package enums

import "fmt"

// ContributionStatus tracks the review lifecycle of a contribution.
type ContributionStatus string

const (
	ContributionStatusPending  ContributionStatus = "pending"
	ContributionStatusAssigned ContributionStatus = "assigned"
	ContributionStatusApproved ContributionStatus = "approved"
	ContributionStatusRejected ContributionStatus = "rejected"
)

var validContributionStatuses = []ContributionStatus{
	ContributionStatusPending,
	ContributionStatusAssigned,
	ContributionStatusApproved,
	ContributionStatusRejected,
}

// String implements fmt.Stringer.
func (c ContributionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContributionStatus.
func (c ContributionStatus) IsValid() bool {
	for _, candidate := range validContributionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContributionStatus converts raw input into a ContributionStatus.
func ParseContributionStatus(value string) (ContributionStatus, error) {
	for _, candidate := range validContributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contribution status %q", value)
}
