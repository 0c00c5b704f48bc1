package enums

import "fmt"

// PledgeStatus tracks non-monetary pledges of goods or services.
type PledgeStatus string

const (
	PledgeStatusOffered   PledgeStatus = "offered"
	PledgeStatusAccepted  PledgeStatus = "accepted"
	PledgeStatusFulfilled PledgeStatus = "fulfilled"
	PledgeStatusDeclined  PledgeStatus = "declined"
)

var validPledgeStatuses = []PledgeStatus{
	PledgeStatusOffered,
	PledgeStatusAccepted,
	PledgeStatusFulfilled,
	PledgeStatusDeclined,
}

// String implements fmt.Stringer.
func (p PledgeStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PledgeStatus.
func (p PledgeStatus) IsValid() bool {
	for _, candidate := range validPledgeStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePledgeStatus converts raw input into a PledgeStatus.
func ParsePledgeStatus(value string) (PledgeStatus, error) {
	for _, candidate := range validPledgeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pledge status %q", value)
}
