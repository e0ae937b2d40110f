package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Employee doubles as a driver in the dispatch workflow. Employee number and
// email are unique per owning account, not globally.
type Employee struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatedByID    uuid.UUID            `gorm:"column:created_by_id;type:uuid;not null;index;uniqueIndex:employees_account_number_key;uniqueIndex:employees_account_email_key"`
	EmployeeNumber string               `gorm:"column:employee_number;type:text;not null;uniqueIndex:employees_account_number_key"`
	Email          string               `gorm:"column:email;type:text;not null;uniqueIndex:employees_account_email_key"`
	FirstName      string               `gorm:"column:first_name;type:text;not null"`
	LastName       string               `gorm:"column:last_name;type:text;not null"`
	Phone          *string              `gorm:"column:phone;type:text"`
	Status         enums.EmployeeStatus `gorm:"column:status;type:employee_status;not null;default:'ACTIVE'"`
	LicenseNumber  *string              `gorm:"column:license_number;type:text"`
	LicenseState   *string              `gorm:"column:license_state;type:text"`
	LicenseExpiry  *time.Time           `gorm:"column:license_expiry"`
	PayRate        decimal.Decimal      `gorm:"column:pay_rate;type:numeric(12,2);not null;default:0"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
