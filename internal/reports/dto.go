package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrdersReportDTO counts the account's orders by lifecycle status.
type OrdersReportDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// CustomerRevenueDTO is one customer's slice of the revenue report.
type CustomerRevenueDTO struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Orders       int64           `json:"orders"`
	Miles        int64           `json:"miles"`
	LoadPay      decimal.Decimal `json:"load_pay"`
	DriverPay    decimal.Decimal `json:"driver_pay"`
	Margin       decimal.Decimal `json:"margin"`
}

// RevenueReportDTO totals pay and mileage across the account's orders, with a
// per-customer rollup. Cancelled orders are excluded.
type RevenueReportDTO struct {
	Orders         int64                `json:"orders"`
	TotalMiles     int64                `json:"total_miles"`
	TotalLoadPay   decimal.Decimal      `json:"total_load_pay"`
	TotalDriverPay decimal.Decimal      `json:"total_driver_pay"`
	TotalMargin    decimal.Decimal      `json:"total_margin"`
	Customers      []CustomerRevenueDTO `json:"customers"`
}
