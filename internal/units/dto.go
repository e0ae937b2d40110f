package units

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// VehicleSummary is the trimmed vehicle shape embedded in unit payloads.
type VehicleSummary struct {
	ID           uuid.UUID           `json:"id"`
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	LicensePlate string              `json:"license_plate"`
	Status       enums.VehicleStatus `json:"status"`
	DriverName   *string             `json:"driver_name,omitempty"`
}

// UnitDTO is the transport shape for a dispatch-board unit.
type UnitDTO struct {
	ID            uuid.UUID              `json:"id"`
	Vehicle       *VehicleSummary        `json:"vehicle,omitempty"`
	Availability  enums.UnitAvailability `json:"availability"`
	Location      *string                `json:"location,omitempty"`
	Zip           *string                `json:"zip,omitempty"`
	AvailableTime *string                `json:"available_time,omitempty"`
	Notes         *string                `json:"notes,omitempty"`
	Dimensions    *string                `json:"dimensions,omitempty"`
	Payload       *string                `json:"payload,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func FromModel(u *models.Unit) *UnitDTO {
	if u == nil {
		return nil
	}
	dto := &UnitDTO{
		ID:            u.ID,
		Availability:  u.Availability,
		Location:      u.Location,
		Zip:           u.Zip,
		AvailableTime: u.AvailableTime,
		Notes:         u.Notes,
		Dimensions:    u.Dimensions,
		Payload:       u.Payload,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Vehicle != nil {
		dto.Vehicle = &VehicleSummary{
			ID:           u.Vehicle.ID,
			Make:         u.Vehicle.Make,
			Model:        u.Vehicle.Model,
			LicensePlate: u.Vehicle.LicensePlate,
			Status:       u.Vehicle.Status,
		}
		if u.Vehicle.Driver != nil {
			name := u.Vehicle.Driver.FirstName + " " + u.Vehicle.Driver.LastName
			dto.Vehicle.DriverName = &name
		}
	}
	return dto
}

func FromModels(rows []models.Unit) []*UnitDTO {
	out := make([]*UnitDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
