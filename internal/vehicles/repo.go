package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// Repository persists vehicles scoped by owning account.
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

func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *Repository) FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Vehicle, error) {
	query := r.db.WithContext(ctx).Preload("Driver").Where("id = ?", id)
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	var vehicle models.Vehicle
	if err := query.First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *Repository) List(ctx context.Context, accountID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&models.Vehicle{}).Preload("Driver")
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Vehicle
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStatus returns every vehicle of the account in the given status.
func (r *Repository) ListByStatus(ctx context.Context, accountID *uuid.UUID, status enums.VehicleStatus) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).Preload("Driver").Where("status = ?", status)
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	var rows []models.Vehicle
	if err := query.Order("license_plate ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByDriver reports how many vehicles other than excludeID list the
// employee as driver. Used to keep driver assignments exclusive.
func (r *Repository) CountByDriver(ctx context.Context, driverID uuid.UUID, excludeID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("driver_id = ?", driverID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountOpenOrders reports how many non-terminal orders reference the vehicle.
func (r *Repository) CountOpenOrders(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("vehicle_id = ?", vehicleID).
		Where("status NOT IN ?", []enums.OrderStatus{
			enums.OrderStatusDelivered,
			enums.OrderStatusCancelled,
			enums.OrderStatusReturned,
		}).
		Count(&count).Error
	return count, err
}

func (r *Repository) Update(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Omit("Driver").Save(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// UpdateStatus moves a vehicle to the provided status without touching other
// columns.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// UpdateDriver reassigns or clears the vehicle's driver.
func (r *Repository) UpdateDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		UpdateColumn("driver_id", driverID).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Vehicle{}, "id = ?", id).Error
}
