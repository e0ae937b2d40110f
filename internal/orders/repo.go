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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Vehicle.Driver").
		Preload("Documents").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("orders.id = ?", id)
	if accountID != nil {
		query = query.Where("customers.created_by_id = ?", *accountID)
	}
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, accountID *uuid.UUID, filters OrderFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Customer").
		Preload("Vehicle").
		Joins("JOIN customers ON customers.id = orders.customer_id")
	if accountID != nil {
		query = query.Where("customers.created_by_id = ?", *accountID)
	}
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("orders.customer_id = ?", *filters.CustomerID)
	}
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Order
	err := query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := r.db.WithContext(ctx).
		Omit("Customer", "Vehicle", "TakenBy", "Documents", "TrackingEvents").
		Save(order).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ClaimPendingAssignment atomically moves a PENDING order to ASSIGNED and
// binds the vehicle and driver in the same statement. A false return means a
// concurrent writer already moved the row and nothing was written.
func (r *repository) ClaimPendingAssignment(ctx context.Context, order *models.Order) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":      enums.OrderStatusAssigned,
			"vehicle_id":  order.VehicleID,
			"driver_kind": order.DriverKind,
			"driver_id":   order.DriverID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TransitionStatus conditionally moves an order between statuses. It reports
// false when the row no longer holds the expected status, leaving it untouched.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

// MaxNumericOrderNumber returns the highest purely numeric order number, or
// zero when none exist. Alphanumeric numbers are ignored.
func (r *repository) MaxNumericOrderNumber(ctx context.Context) (int64, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	var max int64
	for _, number := range numbers {
		value, ok := parseNumeric(number)
		if !ok {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}

func (r *repository) CountByStatus(ctx context.Context, accountID *uuid.UUID) (map[enums.OrderStatus]int64, error) {
	type row struct {
		Status enums.OrderStatus
		Count  int64
	}
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.status AS status, COUNT(*) AS count").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Group("orders.status")
	if accountID != nil {
		query = query.Where("customers.created_by_id = ?", *accountID)
	}
	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, item := range rows {
		out[item.Status] = item.Count
	}
	return out, nil
}

// FindPendingBefore returns orders still pending since before the cutoff,
// across all accounts. Used by the stale-pending sweep.
func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ?", enums.OrderStatusPending).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateDocument(ctx context.Context, doc *models.OrderDocument) (*models.OrderDocument, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) ListDocuments(ctx context.Context, orderID uuid.UUID) ([]models.OrderDocument, error) {
	var rows []models.OrderDocument
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("uploaded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindDocument(ctx context.Context, orderID, docID uuid.UUID) (*models.OrderDocument, error) {
	var doc models.OrderDocument
	err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", docID, orderID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// parseNumeric reports the integer value of a purely numeric string.
func parseNumeric(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	var out int64
	for _, char := range value {
		if char < '0' || char > '9' {
			return 0, false
		}
		out = out*10 + int64(char-'0')
		if out < 0 {
			// overflow; treat as non-numeric rather than wrapping
			return 0, false
		}
	}
	return out, true
}
