package enums

import "fmt"

// WasteType identifies a waste category shared by both portals.
type WasteType string

const (
	WasteTypePlastic    WasteType = "plastic"
	WasteTypePaper      WasteType = "paper"
	WasteTypeElectronic WasteType = "electronic"
	WasteTypeOrganic    WasteType = "organic"
	WasteTypeMetal      WasteType = "metal"
)

var validWasteTypes = []WasteType{
	WasteTypePlastic,
	WasteTypePaper,
	WasteTypeElectronic,
	WasteTypeOrganic,
	WasteTypeMetal,
}

// String implements fmt.Stringer.
func (w WasteType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WasteType.
func (w WasteType) IsValid() bool {
	for _, candidate := range validWasteTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWasteType converts raw input into a WasteType.
func ParseWasteType(value string) (WasteType, error) {
	for _, candidate := range validWasteTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waste type %q", value)
}
