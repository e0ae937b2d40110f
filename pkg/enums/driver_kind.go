package enums

import "fmt"

// DriverKind disambiguates what an order's driver reference points at: a user
// account or an employee record. The dispatch workflow always assigns
// employees; user drivers only appear on directly created orders.
type DriverKind string

const (
	DriverKindUser     DriverKind = "user"
	DriverKindEmployee DriverKind = "employee"
)

var validDriverKinds = []DriverKind{
	DriverKindUser,
	DriverKindEmployee,
}

// String implements fmt.Stringer.
func (d DriverKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DriverKind.
func (d DriverKind) IsValid() bool {
	for _, candidate := range validDriverKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDriverKind converts raw input into a DriverKind.
func ParseDriverKind(value string) (DriverKind, error) {
	for _, candidate := range validDriverKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid driver kind %q", value)
}
