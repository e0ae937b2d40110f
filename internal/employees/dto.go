package employees

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// EmployeeDTO is the transport shape for an employee.
type EmployeeDTO struct {
	ID             uuid.UUID            `json:"id"`
	EmployeeNumber string               `json:"employee_number"`
	Email          string               `json:"email"`
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	Phone          *string              `json:"phone,omitempty"`
	Status         enums.EmployeeStatus `json:"status"`
	LicenseNumber  *string              `json:"license_number,omitempty"`
	LicenseState   *string              `json:"license_state,omitempty"`
	LicenseExpiry  *time.Time           `json:"license_expiry,omitempty"`
	PayRate        decimal.Decimal      `json:"pay_rate"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func FromModel(e *models.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:             e.ID,
		EmployeeNumber: e.EmployeeNumber,
		Email:          e.Email,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Phone:          e.Phone,
		Status:         e.Status,
		LicenseNumber:  e.LicenseNumber,
		LicenseState:   e.LicenseState,
		LicenseExpiry:  e.LicenseExpiry,
		PayRate:        e.PayRate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromModels(rows []models.Employee) []*EmployeeDTO {
	out := make([]*EmployeeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// EmployeePage is a cursor page of employees.
type EmployeePage struct {
	Items      []*EmployeeDTO `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}
