package enums

import "fmt"

// EmployeeStatus describes an employee's standing with the account.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "ACTIVE"
	EmployeeStatusInactive   EmployeeStatus = "INACTIVE"
	EmployeeStatusTerminated EmployeeStatus = "TERMINATED"
	EmployeeStatusOnLeave    EmployeeStatus = "ON_LEAVE"
)

var validEmployeeStatuses = []EmployeeStatus{
	EmployeeStatusActive,
	EmployeeStatusInactive,
	EmployeeStatusTerminated,
	EmployeeStatusOnLeave,
}

// String implements fmt.Stringer.
func (e EmployeeStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EmployeeStatus.
func (e EmployeeStatus) IsValid() bool {
	for _, candidate := range validEmployeeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEmployeeStatus converts raw input into an EmployeeStatus.
func ParseEmployeeStatus(value string) (EmployeeStatus, error) {
	for _, candidate := range validEmployeeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee status %q", value)
}
