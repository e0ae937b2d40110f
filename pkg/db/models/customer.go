package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a shipping customer owned by the account that created it.
type Customer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatedByID uuid.UUID `gorm:"column:created_by_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;type:text;not null"`
	ContactName *string   `gorm:"column:contact_name;type:text"`
	Email       *string   `gorm:"column:email;type:text"`
	Phone       *string   `gorm:"column:phone;type:text"`
	Address     *string   `gorm:"column:address;type:text"`
	City        *string   `gorm:"column:city;type:text"`
	State       *string   `gorm:"column:state;type:text"`
	Zip         *string   `gorm:"column:zip;type:text"`
	Notes       *string   `gorm:"column:notes;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
