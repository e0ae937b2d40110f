package payloads

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderCreatedEvent signals a freshly created order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	AccountID   uuid.UUID         `json:"account_id"`
	Status      enums.OrderStatus `json:"status"`
}

// OrderAssignedEvent is emitted when the dispatch workflow pairs an order with
// a vehicle and driver.
type OrderAssignedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	AccountID   uuid.UUID `json:"account_id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// OrderStatusChangedEvent reports a lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	AccountID   uuid.UUID         `json:"account_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// OrderPendingNudgeEvent carries the payload for stale-pending nudges.
type OrderPendingNudgeEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	AccountID   uuid.UUID `json:"account_id"`
	PendingDays int       `json:"pending_days"`
}

// UserRegisteredEvent announces a new pending registration to admins.
type UserRegisteredEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// UserApprovedEvent is emitted when an admin approves a pending user.
type UserApprovedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// UserRejectedEvent is emitted when an admin rejects a pending user.
type UserRejectedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason,omitempty"`
}
