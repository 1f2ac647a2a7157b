package enums

import "fmt"

// ContributionType distinguishes items offered for resale from rentals.
type ContributionType string

const (
	ContributionTypeSell ContributionType = "sell"
	ContributionTypeRent ContributionType = "rent"
)

var validContributionTypes = []ContributionType{
	ContributionTypeSell,
	ContributionTypeRent,
}

// String implements fmt.Stringer.
func (c ContributionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContributionType.
func (c ContributionType) IsValid() bool {
	for _, candidate := range validContributionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContributionType converts raw input into a ContributionType.
func ParseContributionType(value string) (ContributionType, error) {
	for _, candidate := range validContributionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contribution type %q", value)
}
