package enums

import "fmt"

// TimeSlot is one of the fixed pickup windows offered to customers.
type TimeSlot string

const (
	TimeSlotMorning      TimeSlot = "9:00 AM - 11:00 AM"
	TimeSlotLateMorning  TimeSlot = "11:00 AM - 1:00 PM"
	TimeSlotAfternoon    TimeSlot = "1:00 PM - 3:00 PM"
	TimeSlotLateAfternoon TimeSlot = "3:00 PM - 5:00 PM"
)

var validTimeSlots = []TimeSlot{
	TimeSlotMorning,
	TimeSlotLateMorning,
	TimeSlotAfternoon,
	TimeSlotLateAfternoon,
}

// TimeSlots returns the bookable windows in display order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(validTimeSlots))
	copy(out, validTimeSlots)
	return out
}

// IsValid reports whether the value is a known TimeSlot.
func (t TimeSlot) IsValid() bool {
	for _, candidate := range validTimeSlots {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeSlot converts raw input into a TimeSlot.
func ParseTimeSlot(value string) (TimeSlot, error) {
	for _, candidate := range validTimeSlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid time slot %q", value)
}
