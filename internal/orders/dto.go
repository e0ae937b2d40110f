package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// CustomerSummary is the trimmed customer shape embedded in order payloads.
type CustomerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
}

// VehicleSummary is the trimmed vehicle shape embedded in order payloads.
type VehicleSummary struct {
	ID           uuid.UUID           `json:"id"`
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	LicensePlate string              `json:"license_plate"`
	Status       enums.VehicleStatus `json:"status"`
	Driver       *DriverSummary      `json:"driver,omitempty"`
}

// DriverSummary is the trimmed driver shape embedded in order payloads.
type DriverSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// DocumentDTO is the transport shape for an order document.
type DocumentDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Notes      *string   `json:"notes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	OrderNumber     string            `json:"order_number"`
	Status          enums.OrderStatus `json:"status"`
	Customer        *CustomerSummary  `json:"customer,omitempty"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	Vehicle         *VehicleSummary   `json:"vehicle,omitempty"`
	DriverKind      *enums.DriverKind `json:"driver_kind,omitempty"`
	DriverID        *uuid.UUID        `json:"driver_id,omitempty"`
	TakenByID       *uuid.UUID        `json:"taken_by_id,omitempty"`
	PickupAddress   string            `json:"pickup_address"`
	DeliveryAddress string            `json:"delivery_address"`
	PickupAt        *time.Time        `json:"pickup_at,omitempty"`
	DeliveryAt      *time.Time        `json:"delivery_at,omitempty"`
	Miles           *int              `json:"miles,omitempty"`
	Pieces          *int              `json:"pieces,omitempty"`
	Weight          *decimal.Decimal  `json:"weight,omitempty"`
	LoadPay         decimal.Decimal   `json:"load_pay"`
	DriverPay       decimal.Decimal   `json:"driver_pay"`
	Notes           *string           `json:"notes,omitempty"`
	Documents       []DocumentDTO     `json:"documents,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		CustomerID:      o.CustomerID,
		DriverKind:      o.DriverKind,
		DriverID:        o.DriverID,
		TakenByID:       o.TakenByID,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		PickupAt:        o.PickupAt,
		DeliveryAt:      o.DeliveryAt,
		Miles:           o.Miles,
		Pieces:          o.Pieces,
		Weight:          o.Weight,
		LoadPay:         o.LoadPay,
		DriverPay:       o.DriverPay,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Customer != nil {
		dto.Customer = &CustomerSummary{
			ID:    o.Customer.ID,
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
		}
	}
	if o.Vehicle != nil {
		dto.Vehicle = &VehicleSummary{
			ID:           o.Vehicle.ID,
			Make:         o.Vehicle.Make,
			Model:        o.Vehicle.Model,
			LicensePlate: o.Vehicle.LicensePlate,
			Status:       o.Vehicle.Status,
		}
		if o.Vehicle.Driver != nil {
			dto.Vehicle.Driver = &DriverSummary{
				ID:        o.Vehicle.Driver.ID,
				FirstName: o.Vehicle.Driver.FirstName,
				LastName:  o.Vehicle.Driver.LastName,
			}
		}
	}
	for _, doc := range o.Documents {
		dto.Documents = append(dto.Documents, DocumentDTO{
			ID:         doc.ID,
			Name:       doc.Name,
			Notes:      doc.Notes,
			UploadedAt: doc.UploadedAt,
		})
	}
	return dto
}

func FromModels(rows []models.Order) []*OrderDTO {
	out := make([]*OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// OrderPage is a cursor page of orders.
type OrderPage struct {
	Items      []*OrderDTO `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}
