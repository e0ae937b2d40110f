package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// Repository persists employees scoped by owning account.
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

func (r *Repository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *Repository) FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Employee, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	var employee models.Employee
	if err := query.First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *Repository) List(ctx context.Context, accountID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Employee, error) {
	query := r.db.WithContext(ctx).Model(&models.Employee{})
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Employee
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

// ListActive returns every active employee for the account, for driver pickers.
func (r *Repository) ListActive(ctx context.Context, accountID *uuid.UUID) ([]models.Employee, error) {
	query := r.db.WithContext(ctx).Where("status = ?", enums.EmployeeStatusActive)
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	var rows []models.Employee
	if err := query.Order("last_name ASC, first_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Save(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id).Error
}

// CountVehicleAssignments reports how many vehicles list the employee as driver.
func (r *Repository) CountVehicleAssignments(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("driver_id = ?", employeeID).
		Count(&count).Error
	return count, err
}
