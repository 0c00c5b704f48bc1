package enums

import "fmt"

// OffsiteGiftStatus tracks manual review of gifts completed off-platform.
// Hosted-checkout gifts start unconfirmed and flip to confirmed once an
// admin verifies the payout actually landed.
type OffsiteGiftStatus string

const (
	OffsiteGiftStatusUnconfirmed OffsiteGiftStatus = "unconfirmed"
	OffsiteGiftStatusConfirmed   OffsiteGiftStatus = "confirmed"
	OffsiteGiftStatusRejected    OffsiteGiftStatus = "rejected"
)

var validOffsiteGiftStatuses = []OffsiteGiftStatus{
	OffsiteGiftStatusUnconfirmed,
	OffsiteGiftStatusConfirmed,
	OffsiteGiftStatusRejected,
}

// String implements fmt.Stringer.
func (o OffsiteGiftStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OffsiteGiftStatus.
func (o OffsiteGiftStatus) IsValid() bool {
	for _, candidate := range validOffsiteGiftStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOffsiteGiftStatus converts raw input into an OffsiteGiftStatus.
func ParseOffsiteGiftStatus(value string) (OffsiteGiftStatus, error) {
	for _, candidate := range validOffsiteGiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offsite gift status %q", value)
}
