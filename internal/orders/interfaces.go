package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// OrderFilters narrows order list queries.
type OrderFilters struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}

// Repository defines persistence operations for orders and their children.
// Reads take an optional account filter applied through the owning customer;
// nil means cross-account visibility and only the policy layer grants that.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, accountID *uuid.UUID, filters OrderFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) (*models.Order, error)
	ClaimPendingAssignment(ctx context.Context, order *models.Order) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MaxNumericOrderNumber(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, accountID *uuid.UUID) (map[enums.OrderStatus]int64, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	CreateDocument(ctx context.Context, doc *models.OrderDocument) (*models.OrderDocument, error)
	ListDocuments(ctx context.Context, orderID uuid.UUID) ([]models.OrderDocument, error)
	FindDocument(ctx context.Context, orderID, docID uuid.UUID) (*models.OrderDocument, error)
}
