package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/internal/employees"
	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/internal/vehicles"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
)

// AssignInput pairs a pending order with an available vehicle and driver.
type AssignInput struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	VehicleID uuid.UUID `json:"vehicle_id" validate:"required"`
	DriverID  uuid.UUID `json:"driver_id" validate:"required"`
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	Status   string  `json:"status" validate:"required"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// TrackingEventDTO is one entry of an order's audit trail.
type TrackingEventDTO struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Location  *string   `json:"location,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackingViewDTO is the order plus its full trail, oldest event first.
type TrackingViewDTO struct {
	Order  *orders.OrderDTO   `json:"order"`
	Events []TrackingEventDTO `json:"events"`
}

// DashboardDTO is the dispatch board summary.
type DashboardDTO struct {
	PendingOrders     int64                    `json:"pending_orders"`
	ActiveOrders      int64                    `json:"active_orders"`
	DeliveredOrders   int64                    `json:"delivered_orders"`
	AvailableVehicles []*vehicles.VehicleDTO   `json:"available_vehicles"`
	ActiveDrivers     []*employees.EmployeeDTO `json:"active_drivers"`
}

func eventsFromModels(rows []models.TrackingEvent) []TrackingEventDTO {
	out := make([]TrackingEventDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TrackingEventDTO{
			ID:        row.ID,
			Status:    row.Status,
			Location:  row.Location,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
