package enums

import "fmt"

// UnitAvailability is the dispatcher-facing tri-state for a unit.
type UnitAvailability string

const (
	UnitAvailable    UnitAvailability = "AVAILABLE"
	UnitBusy         UnitAvailability = "BUSY"
	UnitNotAvailable UnitAvailability = "NOT_AVAILABLE"
)

var validUnitAvailabilities = []UnitAvailability{
	UnitAvailable,
	UnitBusy,
	UnitNotAvailable,
}

// String implements fmt.Stringer.
func (u UnitAvailability) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitAvailability.
func (u UnitAvailability) IsValid() bool {
	for _, candidate := range validUnitAvailabilities {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitAvailability converts raw input into a UnitAvailability.
func ParseUnitAvailability(value string) (UnitAvailability, error) {
	for _, candidate := range validUnitAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit availability %q", value)
}
