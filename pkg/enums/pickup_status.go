package enums

import "fmt"

// PickupStatus tracks the lifecycle of a scheduled pickup.
type PickupStatus string

const (
	PickupStatusPending    PickupStatus = "pending"
	PickupStatusInProgress PickupStatus = "in-progress"
	PickupStatusCompleted  PickupStatus = "completed"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusPending,
	PickupStatusInProgress,
	PickupStatusCompleted,
}

// String implements fmt.Stringer.
func (s PickupStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PickupStatus.
func (s PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s PickupStatus) IsTerminal() bool {
	return s == PickupStatusCompleted
}

// Next returns the single legal successor status, if any.
func (s PickupStatus) Next() (PickupStatus, bool) {
	switch s {
	case PickupStatusPending:
		return PickupStatusInProgress, true
	case PickupStatusInProgress:
		return PickupStatusCompleted, true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether next immediately follows s. The lifecycle
// only moves forward and never skips a state.
func (s PickupStatus) CanTransitionTo(next PickupStatus) bool {
	successor, ok := s.Next()
	return ok && successor == next
}

// ParsePickupStatus converts raw input into a PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
