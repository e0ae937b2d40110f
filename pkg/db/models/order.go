package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Order is a load to be dispatched. Ownership is inherited from the customer;
// the driver reference is a tagged pair so user-account drivers and employee
// drivers share one field.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'PENDING'"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Customer        *Customer         `gorm:"foreignKey:CustomerID"`
	VehicleID       *uuid.UUID        `gorm:"column:vehicle_id;type:uuid"`
	Vehicle         *Vehicle          `gorm:"foreignKey:VehicleID"`
	DriverKind      *enums.DriverKind `gorm:"column:driver_kind;type:driver_kind"`
	DriverID        *uuid.UUID        `gorm:"column:driver_id;type:uuid"`
	TakenByID       *uuid.UUID        `gorm:"column:taken_by_id;type:uuid"`
	TakenBy         *Employee         `gorm:"foreignKey:TakenByID"`
	PickupAddress   string            `gorm:"column:pickup_address;type:text;not null"`
	DeliveryAddress string            `gorm:"column:delivery_address;type:text;not null"`
	PickupAt        *time.Time        `gorm:"column:pickup_at"`
	DeliveryAt      *time.Time        `gorm:"column:delivery_at"`
	Miles           *int              `gorm:"column:miles"`
	Pieces          *int              `gorm:"column:pieces"`
	Weight          *decimal.Decimal  `gorm:"column:weight;type:numeric(12,2)"`
	LoadPay         decimal.Decimal   `gorm:"column:load_pay;type:numeric(12,2);not null;default:0"`
	DriverPay       decimal.Decimal   `gorm:"column:driver_pay;type:numeric(12,2);not null;default:0"`
	Notes           *string           `gorm:"column:notes;type:text"`
	Documents       []OrderDocument   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingEvents  []TrackingEvent   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
