package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/employees"
	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/internal/tracking"
	"github.com/fleetdesk/fleetdesk-backend/internal/units"
	"github.com/fleetdesk/fleetdesk-backend/internal/vehicles"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// Service defines the dispatch workflow behaviors.
type Service interface {
	Assign(ctx context.Context, actor scope.Actor, input AssignInput) (*orders.OrderDTO, error)
	UpdateStatus(ctx context.Context, actor scope.Actor, orderID uuid.UUID, input UpdateStatusInput) (*orders.OrderDTO, error)
	Track(ctx context.Context, actor scope.Actor, orderID uuid.UUID) (*TrackingViewDTO, error)
	Dashboard(ctx context.Context, actor scope.Actor) (*DashboardDTO, error)
	AvailableVehicles(ctx context.Context, actor scope.Actor) ([]*vehicles.VehicleDTO, error)
	AvailableDrivers(ctx context.Context, actor scope.Actor) ([]*employees.EmployeeDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies of the dispatch service. DB is the
// read connection; mutations go through TxRunner.
type ServiceParams struct {
	DB         *gorm.DB
	TxRunner   txRunner
	OrdersRepo orders.Repository
	Outbox     outboxPublisher
	Policy     scope.Policy
}

type service struct {
	db     *gorm.DB
	tx     txRunner
	orders orders.Repository
	outbox outboxPublisher
	policy scope.Policy
}

// NewService constructs the dispatch service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if params.Policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{
		db:     params.DB,
		tx:     params.TxRunner,
		orders: params.OrdersRepo,
		outbox: params.Outbox,
		policy: params.Policy,
	}, nil
}

// Assign pairs a pending order with an available vehicle and an active
// driver. Preconditions are checked in a fixed sequence and every effect runs
// in one transaction; the PENDING check is re-applied by the guarded status
// write, so of two concurrent assignments exactly one wins.
func (s *service) Assign(ctx context.Context, actor scope.Actor, input AssignInput) (*orders.OrderDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)
	var assigned *models.Order

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, accountFilter, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		vehiclesRepo := vehicles.NewRepository(tx)
		vehicle, err := vehiclesRepo.FindByID(ctx, accountFilter, input.VehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("vehicle")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle")
		}
		if vehicle.Status != enums.VehicleStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is not available")
		}

		driver, err := employees.NewRepository(tx).FindByID(ctx, accountFilter, input.DriverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("driver")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find driver")
		}
		if driver.Status != enums.EmployeeStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "driver is not active")
		}

		if vehicle.DriverID == nil || *vehicle.DriverID != driver.ID {
			if err := vehiclesRepo.UpdateDriver(ctx, vehicle.ID, &driver.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign vehicle driver")
			}
		}

		kind := enums.DriverKindEmployee
		order.Status = enums.OrderStatusAssigned
		order.VehicleID = &vehicle.ID
		order.DriverKind = &kind
		order.DriverID = &driver.ID
		claimed, err := ordersRepo.ClaimPendingAssignment(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		location := order.PickupAddress
		note := fmt.Sprintf("Assigned to %s %s (%s) driven by %s %s",
			vehicle.Make, vehicle.Model, vehicle.LicensePlate,
			driver.FirstName, driver.LastName)
		if _, err := tracking.NewRepository(tx).Append(ctx, &models.TrackingEvent{
			OrderID:  order.ID,
			Status:   enums.OrderStatusAssigned.String(),
			Location: &location,
			Notes:    &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append tracking event")
		}

		event := outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderAssigned,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: payloads.OrderAssignedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				AccountID:   actor.UserID,
				VehicleID:   vehicle.ID,
				DriverID:    driver.ID,
				AssignedAt:  time.Now().UTC(),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue assignment event")
		}

		assigned = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// re-read outside the tx for the joined customer + vehicle + driver view
	full, err := s.orders.FindByID(ctx, accountFilter, assigned.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return orders.FromModel(full), nil
}

// UpdateStatus moves an order along the lifecycle graph. Illegal transitions
// are state conflicts; a delivery frees the order's vehicle.
func (s *service) UpdateStatus(ctx context.Context, actor scope.Actor, orderID uuid.UUID, input UpdateStatusInput) (*orders.OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	accountFilter := s.policy.AccountFilter(actor)
	var updated *models.Order

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, accountFilter, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
		}

		if !CanTransition(order.Status, next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}
		previous := order.Status

		moved, err := ordersRepo.TransitionStatus(ctx, order.ID, previous, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", previous, next))
		}
		order.Status = next

		notes := fmt.Sprintf("Order status updated to %s", next)
		if input.Notes != nil {
			notes = *input.Notes
		}
		if _, err := tracking.NewRepository(tx).Append(ctx, &models.TrackingEvent{
			OrderID:  order.ID,
			Status:   next.String(),
			Location: input.Location,
			Notes:    &notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append tracking event")
		}

		if next == enums.OrderStatusDelivered && order.VehicleID != nil {
			vehiclesRepo := vehicles.NewRepository(tx)
			if err := vehiclesRepo.UpdateStatus(ctx, *order.VehicleID, enums.VehicleStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release vehicle")
			}
			if err := units.NewRepository(tx).SetAvailabilityByVehicle(ctx, *order.VehicleID, enums.UnitAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync unit availability")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderStatusChanged,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				AccountID:   actor.UserID,
				FromStatus:  previous,
				ToStatus:    next,
				ChangedAt:   time.Now().UTC(),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue status change event")
		}

		updated = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	full, err := s.orders.FindByID(ctx, accountFilter, updated.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return orders.FromModel(full), nil
}

// Track returns the order and its full tracking trail.
func (s *service) Track(ctx context.Context, actor scope.Actor, orderID uuid.UUID) (*TrackingViewDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)

	order, err := s.orders.FindByID(ctx, accountFilter, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}

	events, err := tracking.NewRepository(s.db).ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracking events")
	}

	return &TrackingViewDTO{
		Order:  orders.FromModel(order),
		Events: eventsFromModels(events),
	}, nil
}

// Dashboard summarizes the dispatch board for the caller's account.
func (s *service) Dashboard(ctx context.Context, actor scope.Actor) (*DashboardDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)

	counts, err := s.orders.CountByStatus(ctx, accountFilter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	availableVehicles, err := s.AvailableVehicles(ctx, actor)
	if err != nil {
		return nil, err
	}
	activeDrivers, err := s.AvailableDrivers(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &DashboardDTO{
		PendingOrders:     counts[enums.OrderStatusPending],
		ActiveOrders:      counts[enums.OrderStatusAssigned] + counts[enums.OrderStatusInTransit],
		DeliveredOrders:   counts[enums.OrderStatusDelivered],
		AvailableVehicles: availableVehicles,
		ActiveDrivers:     activeDrivers,
	}, nil
}

// AvailableVehicles lists vehicles eligible for assignment.
func (s *service) AvailableVehicles(ctx context.Context, actor scope.Actor) ([]*vehicles.VehicleDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)
	rows, err := vehicles.NewRepository(s.db).ListByStatus(ctx, accountFilter, enums.VehicleStatusAvailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available vehicles")
	}
	return vehicles.FromModels(rows), nil
}

// AvailableDrivers lists active employees eligible for assignment.
func (s *service) AvailableDrivers(ctx context.Context, actor scope.Actor) ([]*employees.EmployeeDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)
	rows, err := employees.NewRepository(s.db).ListActive(ctx, accountFilter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active drivers")
	}
	return employees.FromModels(rows), nil
}
