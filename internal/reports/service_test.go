package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  created_by_id TEXT NOT NULL,
  name TEXT NOT NULL,
  contact_name TEXT,
  email TEXT,
  phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  zip TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'PENDING',
  customer_id TEXT NOT NULL,
  vehicle_id TEXT,
  driver_kind TEXT,
  driver_id TEXT,
  taken_by_id TEXT,
  pickup_address TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  pickup_at DATETIME,
  delivery_at DATETIME,
  miles INTEGER,
  pieces INTEGER,
  weight NUMERIC,
  load_pay TEXT NOT NULL DEFAULT '0',
  driver_pay TEXT NOT NULL DEFAULT '0',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type reportsFixture struct {
	db    *gorm.DB
	svc   Service
	actor scope.Actor
}

func newReportsFixture(t *testing.T) *reportsFixture {
	t.Helper()
	db := setupReportsTestDB(t)
	svc, err := NewService(orders.NewRepository(db), NewRepository(db), scope.AccountOwned())
	require.NoError(t, err)
	return &reportsFixture{
		db:    db,
		svc:   svc,
		actor: scope.Actor{UserID: uuid.New(), Role: enums.UserRoleDispatcher},
	}
}

func (f *reportsFixture) seedCustomer(t *testing.T, name string, accountID uuid.UUID) *models.Customer {
	t.Helper()
	customer := &models.Customer{ID: uuid.New(), CreatedByID: accountID, Name: name}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *reportsFixture) seedOrder(t *testing.T, customerID uuid.UUID, number string, status enums.OrderStatus, miles int, loadPay, driverPay string, createdAt time.Time) {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		Status:          status,
		CustomerID:      customerID,
		PickupAddress:   "12 Dock St",
		DeliveryAddress: "99 Bay Rd",
		Miles:           &miles,
		LoadPay:         decimal.RequireFromString(loadPay),
		DriverPay:       decimal.RequireFromString(driverPay),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, f.db.Create(order).Error)
}

func TestOrdersReportCountsEveryStatus(t *testing.T) {
	f := newReportsFixture(t)
	customer := f.seedCustomer(t, "Acme Freight", f.actor.UserID)

	now := time.Now()
	f.seedOrder(t, customer.ID, "1001", enums.OrderStatusPending, 10, "100", "40", now)
	f.seedOrder(t, customer.ID, "1002", enums.OrderStatusPending, 10, "100", "40", now)
	f.seedOrder(t, customer.ID, "1003", enums.OrderStatusDelivered, 10, "100", "40", now)

	report, err := f.svc.Orders(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Total)
	assert.Equal(t, int64(2), report.ByStatus["PENDING"])
	assert.Equal(t, int64(1), report.ByStatus["DELIVERED"])
	assert.Equal(t, int64(0), report.ByStatus["CANCELLED"])
	assert.Len(t, report.ByStatus, len(enums.OrderStatuses()))
}

func TestOrdersReportScopedToAccount(t *testing.T) {
	f := newReportsFixture(t)
	mine := f.seedCustomer(t, "Acme Freight", f.actor.UserID)
	other := f.seedCustomer(t, "Other Co", uuid.New())

	now := time.Now()
	f.seedOrder(t, mine.ID, "1001", enums.OrderStatusPending, 10, "100", "40", now)
	f.seedOrder(t, other.ID, "1002", enums.OrderStatusPending, 10, "100", "40", now)

	report, err := f.svc.Orders(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Total)
}

func TestRevenueReportTotalsAndRollup(t *testing.T) {
	f := newReportsFixture(t)
	acme := f.seedCustomer(t, "Acme Freight", f.actor.UserID)
	zenith := f.seedCustomer(t, "Zenith Transport", f.actor.UserID)

	now := time.Now()
	f.seedOrder(t, acme.ID, "1001", enums.OrderStatusDelivered, 120, "550.50", "220.25", now)
	f.seedOrder(t, acme.ID, "1002", enums.OrderStatusInTransit, 80, "300.00", "120.00", now)
	f.seedOrder(t, zenith.ID, "1003", enums.OrderStatusDelivered, 200, "900.00", "400.00", now)
	// cancelled orders never count
	f.seedOrder(t, acme.ID, "1004", enums.OrderStatusCancelled, 50, "999.99", "500.00", now)

	report, err := f.svc.Revenue(context.Background(), f.actor, RangeInput{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Orders)
	assert.Equal(t, int64(400), report.TotalMiles)
	assert.True(t, report.TotalLoadPay.Equal(decimal.RequireFromString("1750.50")), report.TotalLoadPay.String())
	assert.True(t, report.TotalDriverPay.Equal(decimal.RequireFromString("740.25")), report.TotalDriverPay.String())
	assert.True(t, report.TotalMargin.Equal(decimal.RequireFromString("1010.25")), report.TotalMargin.String())

	require.Len(t, report.Customers, 2)
	// ordered by load pay descending
	assert.Equal(t, "Zenith Transport", report.Customers[0].CustomerName)
	assert.Equal(t, int64(1), report.Customers[0].Orders)
	assert.True(t, report.Customers[0].Margin.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, "Acme Freight", report.Customers[1].CustomerName)
	assert.Equal(t, int64(2), report.Customers[1].Orders)
	assert.Equal(t, int64(200), report.Customers[1].Miles)
}

func TestRevenueReportRangeFilter(t *testing.T) {
	f := newReportsFixture(t)
	customer := f.seedCustomer(t, "Acme Freight", f.actor.UserID)

	old := time.Now().Add(-72 * time.Hour)
	fresh := time.Now()
	f.seedOrder(t, customer.ID, "1001", enums.OrderStatusDelivered, 100, "500", "200", old)
	f.seedOrder(t, customer.ID, "1002", enums.OrderStatusDelivered, 50, "250", "100", fresh)

	from := time.Now().Add(-24 * time.Hour)
	report, err := f.svc.Revenue(context.Background(), f.actor, RangeInput{From: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Orders)
	assert.Equal(t, int64(50), report.TotalMiles)
}

func TestRevenueReportRejectsInvertedRange(t *testing.T) {
	f := newReportsFixture(t)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err := f.svc.Revenue(context.Background(), f.actor, RangeInput{From: &from, To: &to})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRevenueReportEmptyAccount(t *testing.T) {
	f := newReportsFixture(t)

	report, err := f.svc.Revenue(context.Background(), f.actor, RangeInput{})
	require.NoError(t, err)
	assert.Zero(t, report.Orders)
	assert.Empty(t, report.Customers)
	assert.True(t, report.TotalLoadPay.Equal(decimal.Zero))
}
