package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/customers"
	"github.com/fleetdesk/fleetdesk-backend/internal/employees"
	"github.com/fleetdesk/fleetdesk-backend/internal/tracking"
	"github.com/fleetdesk/fleetdesk-backend/internal/vehicles"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

const orderNumberAttempts = 10

// CreateOrderInput is the payload accepted when creating an order. Vehicle
// and driver are both optional but must be supplied together; a complete pair
// creates the order already assigned.
type CreateOrderInput struct {
	CustomerID      uuid.UUID        `json:"customer_id" validate:"required"`
	OrderNumber     *string          `json:"order_number,omitempty"`
	VehicleID       *uuid.UUID       `json:"vehicle_id,omitempty"`
	DriverID        *uuid.UUID       `json:"driver_id,omitempty"`
	PickupAddress   string           `json:"pickup_address" validate:"required"`
	DeliveryAddress string           `json:"delivery_address" validate:"required"`
	PickupAt        *time.Time       `json:"pickup_at,omitempty"`
	DeliveryAt      *time.Time       `json:"delivery_at,omitempty"`
	Miles           *int             `json:"miles,omitempty"`
	Pieces          *int             `json:"pieces,omitempty"`
	Weight          *decimal.Decimal `json:"weight,omitempty"`
	LoadPay         *decimal.Decimal `json:"load_pay,omitempty"`
	DriverPay       *decimal.Decimal `json:"driver_pay,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// UpdateOrderInput carries a partial update of order facts. Lifecycle status
// is never updated here; that goes through the dispatch workflow.
type UpdateOrderInput struct {
	PickupAddress   *string          `json:"pickup_address,omitempty"`
	DeliveryAddress *string          `json:"delivery_address,omitempty"`
	PickupAt        *time.Time       `json:"pickup_at,omitempty"`
	DeliveryAt      *time.Time       `json:"delivery_at,omitempty"`
	Miles           *int             `json:"miles,omitempty"`
	Pieces          *int             `json:"pieces,omitempty"`
	Weight          *decimal.Decimal `json:"weight,omitempty"`
	LoadPay         *decimal.Decimal `json:"load_pay,omitempty"`
	DriverPay       *decimal.Decimal `json:"driver_pay,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// ListOrdersInput bundles list filters with pagination.
type ListOrdersInput struct {
	Status     *string
	CustomerID *uuid.UUID
	Pagination pagination.Params
}

// Service defines the behavior needed by the orders controller.
type Service interface {
	Create(ctx context.Context, actor scope.Actor, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, actor scope.Actor, input ListOrdersInput) (*OrderPage, error)
	Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     *db.Client
	repo   Repository
	outbox outboxPublisher
	policy scope.Policy
}

// NewService constructs an orders service.
func NewService(client *db.Client, repo Repository, publisher outboxPublisher, policy scope.Policy) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{db: client, repo: repo, outbox: publisher, policy: policy}, nil
}

func (s *service) Create(ctx context.Context, actor scope.Actor, input CreateOrderInput) (*OrderDTO, error) {
	if strings.TrimSpace(input.PickupAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup_address is required")
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery_address is required")
	}
	if (input.VehicleID == nil) != (input.DriverID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle_id and driver_id must be supplied together")
	}

	var created *models.Order
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		accountFilter := s.policy.AccountFilter(actor)

		if _, err := customers.NewRepository(tx).FindByID(ctx, accountFilter, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("customer")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customer")
		}

		order := &models.Order{
			Status:          enums.OrderStatusPending,
			CustomerID:      input.CustomerID,
			PickupAddress:   strings.TrimSpace(input.PickupAddress),
			DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
			PickupAt:        input.PickupAt,
			DeliveryAt:      input.DeliveryAt,
			Miles:           input.Miles,
			Pieces:          input.Pieces,
			Weight:          input.Weight,
			LoadPay:         decimalOrZero(input.LoadPay),
			DriverPay:       decimalOrZero(input.DriverPay),
			Notes:           input.Notes,
		}

		if input.VehicleID != nil && input.DriverID != nil {
			if _, err := vehicles.NewRepository(tx).FindByID(ctx, accountFilter, *input.VehicleID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return scope.NotFound("vehicle")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle")
			}
			if _, err := employees.NewRepository(tx).FindByID(ctx, accountFilter, *input.DriverID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return scope.NotFound("driver")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find driver")
			}
			kind := enums.DriverKindEmployee
			order.Status = enums.OrderStatusAssigned
			order.VehicleID = input.VehicleID
			order.DriverKind = &kind
			order.DriverID = input.DriverID
		}

		inserted, err := s.insertWithNumber(ctx, repo, order, input.OrderNumber)
		if err != nil {
			return err
		}
		created = inserted

		note := "order created"
		if _, err := tracking.NewRepository(tx).Append(ctx, &models.TrackingEvent{
			OrderID: inserted.ID,
			Status:  inserted.Status.String(),
			Notes:   &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append tracking event")
		}

		event := outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderCreated,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   inserted.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: payloads.OrderCreatedEvent{
				OrderID:     inserted.ID,
				OrderNumber: inserted.OrderNumber,
				CustomerID:  inserted.CustomerID,
				AccountID:   actor.UserID,
				Status:      inserted.Status,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order created event")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, actor, created.ID)
}

// insertWithNumber allocates the next sequential order number and inserts the
// order, retrying on unique collisions. An explicit order number is taken as
// is and collisions surface as conflicts.
func (s *service) insertWithNumber(ctx context.Context, repo Repository, order *models.Order, explicit *string) (*models.Order, error) {
	if explicit != nil {
		number := strings.TrimSpace(*explicit)
		if number == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_number cannot be empty")
		}
		order.OrderNumber = number
		inserted, err := repo.Create(ctx, order)
		if err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number already in use")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return inserted, nil
	}

	max, err := repo.MaxNumericOrderNumber(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan order numbers")
	}

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.ID = uuid.Nil
		order.OrderNumber = strconv.FormatInt(max+int64(attempt)+1, 10)
		inserted, err := repo.Create(ctx, order)
		if err == nil {
			return inserted, nil
		}
		if !db.IsUniqueViolation(err, "order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}

	// Sequential allocation lost every race; fall back to a timestamp-prefixed
	// number that the numeric scan will never pick up.
	order.ID = uuid.Nil
	order.OrderNumber = "TS-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	inserted, err := repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return inserted, nil
}

func (s *service) Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, actor scope.Actor, input ListOrdersInput) (*OrderPage, error) {
	filters := OrderFilters{CustomerID: input.CustomerID}
	if input.Status != nil {
		parsed, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &parsed
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.List(ctx, s.policy.AccountFilter(actor), filters, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &OrderPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Items = FromModels(rows)
	return page, nil
}

func (s *service) Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.find(ctx, repo, actor, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal status")
		}

		if input.PickupAddress != nil {
			address := strings.TrimSpace(*input.PickupAddress)
			if address == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "pickup_address cannot be empty")
			}
			order.PickupAddress = address
		}
		if input.DeliveryAddress != nil {
			address := strings.TrimSpace(*input.DeliveryAddress)
			if address == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "delivery_address cannot be empty")
			}
			order.DeliveryAddress = address
		}
		if input.PickupAt != nil {
			order.PickupAt = input.PickupAt
		}
		if input.DeliveryAt != nil {
			order.DeliveryAt = input.DeliveryAt
		}
		if input.Miles != nil {
			order.Miles = input.Miles
		}
		if input.Pieces != nil {
			order.Pieces = input.Pieces
		}
		if input.Weight != nil {
			order.Weight = input.Weight
		}
		if input.LoadPay != nil {
			order.LoadPay = *input.LoadPay
		}
		if input.DriverPay != nil {
			order.DriverPay = *input.DriverPay
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}

		if _, err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, actor, id)
}

// Delete removes an order that has not started moving. Documents and tracking
// events go with it.
func (s *service) Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.find(ctx, repo, actor, id)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusAssigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending or assigned orders can be deleted")
		}

		if err := tracking.NewRepository(tx).DeleteByOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tracking events")
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) find(ctx context.Context, repo Repository, actor scope.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, s.policy.AccountFilter(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

func decimalOrZero(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}
