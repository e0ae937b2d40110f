package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Row is one order flattened for aggregation, joined with its customer.
type Row struct {
	CustomerID   uuid.UUID         `gorm:"column:customer_id"`
	CustomerName string            `gorm:"column:customer_name"`
	Status       enums.OrderStatus `gorm:"column:status"`
	Miles        *int              `gorm:"column:miles"`
	LoadPay      decimal.Decimal   `gorm:"column:load_pay"`
	DriverPay    decimal.Decimal   `gorm:"column:driver_pay"`
}

// Repository reads order rows for report aggregation. Sums are computed in the
// service with decimal arithmetic, not in SQL.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListRows returns one row per order of the account, optionally bounded by
// creation time.
func (r *Repository) ListRows(ctx context.Context, accountID *uuid.UUID, from, to *time.Time) ([]Row, error) {
	query := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.customer_id AS customer_id, customers.name AS customer_name, orders.status AS status, orders.miles AS miles, orders.load_pay AS load_pay, orders.driver_pay AS driver_pay").
		Joins("JOIN customers ON customers.id = orders.customer_id")
	if accountID != nil {
		query = query.Where("customers.created_by_id = ?", *accountID)
	}
	if from != nil {
		query = query.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("orders.created_at < ?", *to)
	}
	var rows []Row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
