package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderDocument is a file attached to an order. Only the stored path is
// persisted; bytes live on the document storage backend.
type OrderDocument struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;type:text;not null"`
	Path       string    `gorm:"column:path;type:text;not null"`
	Notes      *string   `gorm:"column:notes;type:text"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}
