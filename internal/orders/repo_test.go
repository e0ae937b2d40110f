package orders

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

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
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
  load_pay NUMERIC NOT NULL DEFAULT 0,
  driver_pay NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_documents (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  name TEXT NOT NULL,
  path TEXT NOT NULL,
  notes TEXT,
  uploaded_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, accountID uuid.UUID) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		ID:          uuid.New(),
		CreatedByID: accountID,
		Name:        "Acme Freight",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		Status:          status,
		CustomerID:      customerID,
		PickupAddress:   "12 Dock St",
		DeliveryAddress: "99 Bay Rd",
		LoadPay:         decimal.NewFromInt(500),
		DriverPay:       decimal.NewFromInt(200),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestMaxNumericOrderNumberIgnoresAlphanumeric(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())

	now := time.Now()
	seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, now)
	seedOrder(t, db, customer.ID, "1007", enums.OrderStatusPending, now)
	seedOrder(t, db, customer.ID, "LOAD-9999", enums.OrderStatusPending, now)

	max, err := repo.MaxNumericOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1007), max)
}

func TestMaxNumericOrderNumberEmptyTable(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	max, err := repo.MaxNumericOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Zero(t, max)
}

func TestFindByIDScopedToAccount(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	accountID := uuid.New()
	customer := seedCustomer(t, db, accountID)
	order := seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, time.Now())

	found, err := repo.FindByID(context.Background(), &accountID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.NotNil(t, found.Customer)
	assert.Equal(t, customer.ID, found.Customer.ID)

	other := uuid.New()
	_, err = repo.FindByID(context.Background(), &other, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersByStatusAndCustomer(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	accountID := uuid.New()
	customerA := seedCustomer(t, db, accountID)
	customerB := seedCustomer(t, db, accountID)

	base := time.Now().Add(-time.Hour)
	seedOrder(t, db, customerA.ID, "1001", enums.OrderStatusPending, base)
	seedOrder(t, db, customerA.ID, "1002", enums.OrderStatusDelivered, base.Add(time.Minute))
	seedOrder(t, db, customerB.ID, "1003", enums.OrderStatusPending, base.Add(2*time.Minute))

	pending := enums.OrderStatusPending
	rows, err := repo.List(context.Background(), &accountID, OrderFilters{Status: &pending}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(context.Background(), &accountID, OrderFilters{Status: &pending, CustomerID: &customerB.ID}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1003", rows[0].OrderNumber)
}

func TestFindPendingBefore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())

	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now().Add(-time.Hour)
	stale := seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, old)
	seedOrder(t, db, customer.ID, "1002", enums.OrderStatusPending, fresh)
	seedOrder(t, db, customer.ID, "1003", enums.OrderStatusDelivered, old)

	rows, err := repo.FindPendingBefore(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}

func TestDocumentsLifecycle(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())
	order := seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, time.Now())

	doc, err := repo.CreateDocument(context.Background(), &models.OrderDocument{
		ID:      uuid.New(),
		OrderID: order.ID,
		Name:    "bol.pdf",
		Path:    "orders/1001/bol.pdf",
	})
	require.NoError(t, err)

	docs, err := repo.ListDocuments(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	found, err := repo.FindDocument(context.Background(), order.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "bol.pdf", found.Name)

	_, err = repo.FindDocument(context.Background(), uuid.New(), doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMaxNumericOrderNumberIgnoresFallbackNumbers(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())

	now := time.Now()
	seedOrder(t, db, customer.ID, "1042", enums.OrderStatusPending, now)
	seedOrder(t, db, customer.ID, "TS-1788106128997811579", enums.OrderStatusPending, now)

	max, err := repo.MaxNumericOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1042), max)
}

func TestTransitionStatusOnlyMovesExpectedStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())
	order := seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, time.Now())

	moved, err := repo.TransitionStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusAssigned)
	require.NoError(t, err)
	assert.True(t, moved)

	// a writer holding a stale PENDING snapshot loses
	moved, err = repo.TransitionStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusAssigned, stored.Status)
}

func TestClaimPendingAssignmentSingleWinner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := seedCustomer(t, db, uuid.New())
	order := seedOrder(t, db, customer.ID, "1001", enums.OrderStatusPending, time.Now())

	vehicleID := uuid.New()
	driverID := uuid.New()
	kind := enums.DriverKindEmployee
	order.VehicleID = &vehicleID
	order.DriverKind = &kind
	order.DriverID = &driverID

	claimed, err := repo.ClaimPendingAssignment(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, claimed)

	rival := *order
	rivalVehicle := uuid.New()
	rival.VehicleID = &rivalVehicle
	claimed, err = repo.ClaimPendingAssignment(context.Background(), &rival)
	require.NoError(t, err)
	assert.False(t, claimed)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusAssigned, stored.Status)
	require.NotNil(t, stored.VehicleID)
	assert.Equal(t, vehicleID, *stored.VehicleID)
}
