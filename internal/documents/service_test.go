package documents

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
	"github.com/fleetdesk/fleetdesk-backend/pkg/storage/local"
)

func setupDocumentsTestDB(t *testing.T) *gorm.DB {
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
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(6)))),
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

type documentsFixture struct {
	db    *gorm.DB
	store *local.Store
	svc   Service
	actor scope.Actor
}

func newDocumentsFixture(t *testing.T) *documentsFixture {
	t.Helper()
	db := setupDocumentsTestDB(t)
	store, err := local.NewStore(config.DocumentsConfig{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	svc, err := NewService(orders.NewRepository(db), store, config.DocumentsConfig{MaxUploadMB: 1}, scope.AccountOwned())
	require.NoError(t, err)
	return &documentsFixture{
		db:    db,
		store: store,
		svc:   svc,
		actor: scope.Actor{UserID: uuid.New(), Role: enums.UserRoleDispatcher},
	}
}

func (f *documentsFixture) seedOrder(t *testing.T, accountID uuid.UUID) *models.Order {
	t.Helper()
	customer := &models.Customer{ID: uuid.New(), CreatedByID: accountID, Name: "Acme Freight"}
	require.NoError(t, f.db.Create(customer).Error)
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "1001",
		Status:          enums.OrderStatusPending,
		CustomerID:      customer.ID,
		PickupAddress:   "12 Dock St",
		DeliveryAddress: "99 Bay Rd",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func TestUploadStoresFileAndAttachesDocument(t *testing.T) {
	f := newDocumentsFixture(t)
	order := f.seedOrder(t, f.actor.UserID)

	notes := "bill of lading"
	doc, err := f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
		FileName:    "bol.pdf",
		ContentType: "application/pdf",
		Size:        13,
		Body:        strings.NewReader("%PDF-1.4 test"),
		Notes:       &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "bol.pdf", doc.Name)
	require.NotNil(t, doc.Notes)
	assert.Equal(t, "bill of lading", *doc.Notes)

	var stored models.OrderDocument
	require.NoError(t, f.db.First(&stored, "order_id = ?", order.ID).Error)
	assert.True(t, strings.HasPrefix(stored.Path, "orders/"+order.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(stored.Path, ".pdf"))

	reader, err := f.store.Open(context.Background(), stored.Path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestUploadRejectsUnsupportedTypes(t *testing.T) {
	f := newDocumentsFixture(t)
	order := f.seedOrder(t, f.actor.UserID)

	cases := []struct {
		name        string
		contentType string
	}{
		{"report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"archive.zip", "application/zip"},
		{"photo.png", "application/pdf"}, // extension and mime disagree
		{"noext", "application/pdf"},
	}
	for _, tc := range cases {
		_, err := f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
			FileName:    tc.name,
			ContentType: tc.contentType,
			Body:        strings.NewReader("data"),
		})
		require.Error(t, err, tc.name)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), tc.name)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.OrderDocument{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadEnforcesSizeCap(t *testing.T) {
	f := newDocumentsFixture(t)
	order := f.seedOrder(t, f.actor.UserID)

	// declared size over the cap is rejected before any bytes move
	_, err := f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
		FileName:    "big.pdf",
		ContentType: "application/pdf",
		Size:        2 << 20,
		Body:        strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	// an understated declared size still trips the hard stop while reading
	oversized := strings.NewReader(strings.Repeat("a", (1<<20)+1))
	_, err = f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
		FileName:    "sneaky.pdf",
		ContentType: "application/pdf",
		Size:        10,
		Body:        oversized,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, f.db.Model(&models.OrderDocument{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadOutOfScopeOrderNotFound(t *testing.T) {
	f := newDocumentsFixture(t)
	order := f.seedOrder(t, uuid.New())

	_, err := f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
		FileName:    "bol.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("data"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestOpenRoundTrip(t *testing.T) {
	f := newDocumentsFixture(t)
	order := f.seedOrder(t, f.actor.UserID)

	uploaded, err := f.svc.Upload(context.Background(), f.actor, order.ID, UploadInput{
		FileName:    "pod.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpegbytes"),
	})
	require.NoError(t, err)

	reader, doc, err := f.svc.Open(context.Background(), f.actor, order.ID, uploaded.ID)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, "pod.jpg", doc.Name)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	_, _, err = f.svc.Open(context.Background(), f.actor, order.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestValidateDocumentType(t *testing.T) {
	ext, err := validateDocumentType("scan.JPEG", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ".jpeg", ext)

	ext, err = validateDocumentType("bol.pdf", "application/pdf; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", ext)

	_, err = validateDocumentType("bol.pdf", "")
	assert.Error(t, err)
}
