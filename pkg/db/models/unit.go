package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Unit is the one-to-one dispatch-board companion of a vehicle. It is created
// alongside the vehicle and soft-deleted with it via is_active.
type Unit struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID     uuid.UUID              `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex"`
	Vehicle       *Vehicle               `gorm:"foreignKey:VehicleID"`
	Availability  enums.UnitAvailability `gorm:"column:availability;type:unit_availability;not null;default:'AVAILABLE'"`
	Location      *string                `gorm:"column:location;type:text"`
	Zip           *string                `gorm:"column:zip;type:text"`
	AvailableTime *string                `gorm:"column:available_time;type:text"`
	Notes         *string                `gorm:"column:notes;type:text"`
	Dimensions    *string                `gorm:"column:dimensions;type:text"`
	Payload       *string                `gorm:"column:payload;type:text"`
	IsActive      bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
