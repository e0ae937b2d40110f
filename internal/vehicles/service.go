package vehicles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/employees"
	"github.com/fleetdesk/fleetdesk-backend/internal/units"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// CreateVehicleInput is the payload accepted when creating a vehicle.
type CreateVehicleInput struct {
	Make         string     `json:"make" validate:"required"`
	Model        string     `json:"model" validate:"required"`
	Year         int        `json:"year" validate:"required,gte=1980"`
	LicensePlate string     `json:"license_plate" validate:"required"`
	VIN          *string    `json:"vin,omitempty"`
	Status       *string    `json:"status,omitempty"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// UpdateVehicleInput carries a partial update; nil fields are untouched.
// ClearDriver unassigns the driver because a nil DriverID alone cannot
// distinguish "leave as is" from "remove".
type UpdateVehicleInput struct {
	Make         *string    `json:"make,omitempty"`
	Model        *string    `json:"model,omitempty"`
	Year         *int       `json:"year,omitempty"`
	LicensePlate *string    `json:"license_plate,omitempty"`
	VIN          *string    `json:"vin,omitempty"`
	Status       *string    `json:"status,omitempty"`
	DriverID     *uuid.UUID `json:"driver_id,omitempty"`
	ClearDriver  bool       `json:"clear_driver,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// Service defines the behavior needed by the vehicles controller.
type Service interface {
	Create(ctx context.Context, actor scope.Actor, input CreateVehicleInput) (*VehicleDTO, error)
	Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context, actor scope.Actor, params pagination.Params) (*VehiclePage, error)
	Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error
}

type service struct {
	db     *db.Client
	policy scope.Policy
}

// NewService constructs a vehicles service.
func NewService(client *db.Client, policy scope.Policy) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "scope policy required")
	}
	return &service{db: client, policy: policy}, nil
}

// Create inserts the vehicle and its dispatch-board unit in one transaction.
func (s *service) Create(ctx context.Context, actor scope.Actor, input CreateVehicleInput) (*VehicleDTO, error) {
	plate := strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate is required")
	}

	status := enums.VehicleStatusAvailable
	if input.Status != nil {
		parsed, err := enums.ParseVehicleStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		status = parsed
	}

	var created *models.Vehicle
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if input.DriverID != nil {
			if err := s.checkDriver(ctx, tx, actor, *input.DriverID, nil); err != nil {
				return err
			}
		}

		vehicle := &models.Vehicle{
			CreatedByID:  actor.UserID,
			Make:         strings.TrimSpace(input.Make),
			Model:        strings.TrimSpace(input.Model),
			Year:         input.Year,
			LicensePlate: plate,
			VIN:          normalizeVIN(input.VIN),
			Status:       status,
			DriverID:     input.DriverID,
			Notes:        input.Notes,
		}
		inserted, err := repo.Create(ctx, vehicle)
		if err != nil {
			if conflict := uniqueConflict(err); conflict != nil {
				return conflict
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
		}
		created = inserted

		unit := &models.Unit{
			VehicleID:    inserted.ID,
			Availability: availabilityFor(inserted.Status),
			IsActive:     true,
		}
		if _, err := units.NewRepository(tx).Create(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create unit")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, actor, created.ID)
}

func (s *service) Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.find(ctx, s.db.DB(), actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(vehicle), nil
}

func (s *service) List(ctx context.Context, actor scope.Actor, params pagination.Params) (*VehiclePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := NewRepository(s.db.DB()).List(ctx, s.policy.AccountFilter(actor), cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	page := &VehiclePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Items = FromModels(rows)
	return page, nil
}

// Update applies a partial update and keeps the unit availability mirror in
// sync with the resulting vehicle status.
func (s *service) Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		vehicle, err := s.find(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		if input.Make != nil {
			vehicle.Make = strings.TrimSpace(*input.Make)
		}
		if input.Model != nil {
			vehicle.Model = strings.TrimSpace(*input.Model)
		}
		if input.Year != nil {
			vehicle.Year = *input.Year
		}
		if input.LicensePlate != nil {
			plate := strings.ToUpper(strings.TrimSpace(*input.LicensePlate))
			if plate == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "license_plate cannot be empty")
			}
			vehicle.LicensePlate = plate
		}
		if input.VIN != nil {
			vehicle.VIN = normalizeVIN(input.VIN)
		}
		if input.Status != nil {
			parsed, err := enums.ParseVehicleStatus(*input.Status)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
			}
			vehicle.Status = parsed
		}
		if input.ClearDriver {
			vehicle.DriverID = nil
			vehicle.Driver = nil
		} else if input.DriverID != nil {
			if err := s.checkDriver(ctx, tx, actor, *input.DriverID, &vehicle.ID); err != nil {
				return err
			}
			vehicle.DriverID = input.DriverID
			vehicle.Driver = nil
		}
		if input.Notes != nil {
			vehicle.Notes = input.Notes
		}

		if _, err := repo.Update(ctx, vehicle); err != nil {
			if conflict := uniqueConflict(err); conflict != nil {
				return conflict
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
		}

		unitRepo := units.NewRepository(tx)
		if err := unitRepo.SetAvailabilityByVehicle(ctx, vehicle.ID, availabilityFor(vehicle.Status)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync unit availability")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, actor, id)
}

// Delete removes a vehicle with no open orders and tombstones its unit.
func (s *service) Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		vehicle, err := s.find(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		open, err := repo.CountOpenOrders(ctx, vehicle.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open orders")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has open orders")
		}

		if err := units.NewRepository(tx).DeactivateByVehicle(ctx, vehicle.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate unit")
		}
		if err := repo.Delete(ctx, vehicle.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
		}
		return nil
	})
}

func (s *service) find(ctx context.Context, tx *gorm.DB, actor scope.Actor, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := NewRepository(tx).FindByID(ctx, s.policy.AccountFilter(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("vehicle")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle")
	}
	return vehicle, nil
}

// checkDriver verifies the driver exists in scope, is active, and is not
// already assigned to another vehicle.
func (s *service) checkDriver(ctx context.Context, tx *gorm.DB, actor scope.Actor, driverID uuid.UUID, excludeVehicleID *uuid.UUID) error {
	employee, err := employees.NewRepository(tx).FindByID(ctx, s.policy.AccountFilter(actor), driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scope.NotFound("driver")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find driver")
	}
	if employee.Status != enums.EmployeeStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "driver is not active")
	}

	count, err := NewRepository(tx).CountByDriver(ctx, driverID, excludeVehicleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count driver assignments")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "driver is already assigned to a vehicle")
	}
	return nil
}

// availabilityFor maps a vehicle status to its unit availability mirror.
func availabilityFor(status enums.VehicleStatus) enums.UnitAvailability {
	switch status {
	case enums.VehicleStatusInUse:
		return enums.UnitBusy
	case enums.VehicleStatusMaintenance, enums.VehicleStatusOutOfService:
		return enums.UnitNotAvailable
	default:
		return enums.UnitAvailable
	}
}

func normalizeVIN(vin *string) *string {
	if vin == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*vin))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// uniqueConflict maps plate and VIN unique violations to conflict errors.
func uniqueConflict(err error) error {
	switch {
	case db.IsUniqueViolation(err, "license_plate"):
		return pkgerrors.New(pkgerrors.CodeConflict, "license plate already in use")
	case db.IsUniqueViolation(err, "vin"):
		return pkgerrors.New(pkgerrors.CodeConflict, "vin already in use")
	default:
		return nil
	}
}
