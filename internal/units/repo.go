package units

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Repository persists dispatch-board units. Units have no owner column of
// their own; scoping goes through the joined vehicle.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if err := r.db.WithContext(ctx).Create(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *Repository) FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Unit, error) {
	query := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Vehicle.Driver").
		Joins("JOIN vehicles ON vehicles.id = units.vehicle_id").
		Where("units.id = ?", id)
	if accountID != nil {
		query = query.Where("vehicles.created_by_id = ?", *accountID)
	}
	var unit models.Unit
	if err := query.First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *Repository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListActive returns the active units visible to the account, vehicle and
// driver preloaded for the dispatch board.
func (r *Repository) ListActive(ctx context.Context, accountID *uuid.UUID) ([]models.Unit, error) {
	query := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Vehicle.Driver").
		Joins("JOIN vehicles ON vehicles.id = units.vehicle_id").
		Where("units.is_active = ?", true)
	if accountID != nil {
		query = query.Where("vehicles.created_by_id = ?", *accountID)
	}
	var rows []models.Unit
	if err := query.Order("units.created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if err := r.db.WithContext(ctx).Omit("Vehicle").Save(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

// SetAvailabilityByVehicle syncs the unit availability mirror of a vehicle.
func (r *Repository) SetAvailabilityByVehicle(ctx context.Context, vehicleID uuid.UUID, availability enums.UnitAvailability) error {
	return r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("vehicle_id = ?", vehicleID).
		UpdateColumn("availability", availability).Error
}

// DeactivateByVehicle soft-deletes the unit when its vehicle is removed.
func (r *Repository) DeactivateByVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("vehicle_id = ?", vehicleID).
		UpdateColumn("is_active", false).Error
}
