package enums

import "fmt"

// NeedStatus tracks the moderation lifecycle of a need.
type NeedStatus string

const (
	NeedStatusPending  NeedStatus = "pending"
	NeedStatusApproved NeedStatus = "approved"
	NeedStatusRejected NeedStatus = "rejected"
	NeedStatusClosed   NeedStatus = "closed"
)

var validNeedStatuses = []NeedStatus{
	NeedStatusPending,
	NeedStatusApproved,
	NeedStatusRejected,
	NeedStatusClosed,
}

// String implements fmt.Stringer.
func (n NeedStatus) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NeedStatus.
func (n NeedStatus) IsValid() bool {
	for _, candidate := range validNeedStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNeedStatus converts raw input into a NeedStatus.
func ParseNeedStatus(value string) (NeedStatus, error) {
	for _, candidate := range validNeedStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid need status %q", value)
}
