package enums

import "fmt"

// DispatchStatus tracks the lifecycle of a dispatch.
type DispatchStatus string

const (
	DispatchStatusInProgress DispatchStatus = "in_progress"
	DispatchStatusCompleted  DispatchStatus = "completed"
)

var validDispatchStatuses = []DispatchStatus{
	DispatchStatusInProgress,
	DispatchStatusCompleted,
}

// String implements fmt.Stringer.
func (d DispatchStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DispatchStatus.
func (d DispatchStatus) IsValid() bool {
	for _, candidate := range validDispatchStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDispatchStatus converts raw input into a DispatchStatus.
func ParseDispatchStatus(value string) (DispatchStatus, error) {
	for _, candidate := range validDispatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch status %q", value)
}
