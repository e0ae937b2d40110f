package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// Repository persists customers. Every read takes an optional account filter;
// a nil filter means cross-account visibility and only the policy layer may
// grant that.
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

func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Customer, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	var customer models.Customer
	if err := query.First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns a page of customers ordered newest first. Callers pass the
// buffered limit; one extra row signals another page.
func (r *Repository) List(ctx context.Context, accountID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if accountID != nil {
		query = query.Where("created_by_id = ?", *accountID)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var rows []models.Customer
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

func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

// CountOrders reports how many orders reference the customer.
func (r *Repository) CountOrders(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}
