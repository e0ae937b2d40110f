package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// DriverSummary is the trimmed driver shape embedded in vehicle payloads.
type DriverSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone,omitempty"`
}

// VehicleDTO is the transport shape for a vehicle.
type VehicleDTO struct {
	ID           uuid.UUID           `json:"id"`
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	Year         int                 `json:"year"`
	LicensePlate string              `json:"license_plate"`
	VIN          *string             `json:"vin,omitempty"`
	Status       enums.VehicleStatus `json:"status"`
	Driver       *DriverSummary      `json:"driver,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func FromModel(v *models.Vehicle) *VehicleDTO {
	if v == nil {
		return nil
	}
	dto := &VehicleDTO{
		ID:           v.ID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		VIN:          v.VIN,
		Status:       v.Status,
		Notes:        v.Notes,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.Driver != nil {
		dto.Driver = &DriverSummary{
			ID:        v.Driver.ID,
			FirstName: v.Driver.FirstName,
			LastName:  v.Driver.LastName,
			Phone:     v.Driver.Phone,
		}
	}
	return dto
}

func FromModels(rows []models.Vehicle) []*VehicleDTO {
	out := make([]*VehicleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// VehiclePage is a cursor page of vehicles.
type VehiclePage struct {
	Items      []*VehicleDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}
