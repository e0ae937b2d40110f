package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Vehicle is a truck or trailer owned by the creating account. At most one
// non-retired vehicle may reference a given driver; the service layer enforces
// that on create and update.
type Vehicle struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatedByID  uuid.UUID           `gorm:"column:created_by_id;type:uuid;not null;index"`
	Make         string              `gorm:"column:make;type:text;not null"`
	Model        string              `gorm:"column:model;type:text;not null"`
	Year         int                 `gorm:"column:year;not null"`
	LicensePlate string              `gorm:"column:license_plate;type:text;not null;uniqueIndex"`
	VIN          *string             `gorm:"column:vin;type:text;uniqueIndex"`
	Status       enums.VehicleStatus `gorm:"column:status;type:vehicle_status;not null;default:'AVAILABLE'"`
	DriverID     *uuid.UUID          `gorm:"column:driver_id;type:uuid"`
	Driver       *Employee           `gorm:"foreignKey:DriverID"`
	Notes        *string             `gorm:"column:notes;type:text"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
