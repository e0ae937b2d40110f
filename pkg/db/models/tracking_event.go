package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingEvent is an append-only audit row for an order. Rows are never
// updated or deleted individually; they go away only when the parent order is
// deleted.
type TrackingEvent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Status    string    `gorm:"column:status;type:text;not null"`
	Location  *string   `gorm:"column:location;type:text"`
	Notes     *string   `gorm:"column:notes;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
