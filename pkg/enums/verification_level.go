package enums

import "fmt"

// VerificationLevel records how thoroughly a need's requester was vetted.
type VerificationLevel string

const (
	VerificationBasicContact VerificationLevel = "basic_contact_verified"
	VerificationCommunity    VerificationLevel = "community_verified"
	VerificationOrganization VerificationLevel = "organization_verified"
)

var validVerificationLevels = []VerificationLevel{
	VerificationBasicContact,
	VerificationCommunity,
	VerificationOrganization,
}

// String implements fmt.Stringer.
func (v VerificationLevel) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VerificationLevel.
func (v VerificationLevel) IsValid() bool {
	for _, candidate := range validVerificationLevels {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationLevel converts raw input into a VerificationLevel.
func ParseVerificationLevel(value string) (VerificationLevel, error) {
	for _, candidate := range validVerificationLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification level %q", value)
}
