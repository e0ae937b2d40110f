package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// CreateCustomerInput is the payload accepted when creating a customer.
type CreateCustomerInput struct {
	Name        string  `json:"name" validate:"required"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Zip         *string `json:"zip,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateCustomerInput carries a partial update; nil fields are untouched.
type UpdateCustomerInput struct {
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Zip         *string `json:"zip,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Service defines the behavior needed by the customers controller.
type Service interface {
	Create(ctx context.Context, actor scope.Actor, input CreateCustomerInput) (*CustomerDTO, error)
	Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, actor scope.Actor, params pagination.Params) (*CustomerPage, error)
	Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, accountID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountOrders(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type service struct {
	repo   repository
	policy scope.Policy
}

// NewService constructs a customers service.
func NewService(repo repository, policy scope.Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{repo: repo, policy: policy}, nil
}

func (s *service) Create(ctx context.Context, actor scope.Actor, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	customer := &models.Customer{
		CreatedByID: actor.UserID,
		Name:        name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		Zip:         input.Zip,
		Notes:       input.Notes,
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) List(ctx context.Context, actor scope.Actor, params pagination.Params) (*CustomerPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, s.policy.AccountFilter(actor), cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	page := &CustomerPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Items = FromModels(rows)
	return page, nil
}

func (s *service) Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		customer.Name = name
	}
	if input.ContactName != nil {
		customer.ContactName = input.ContactName
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.City != nil {
		customer.City = input.City
	}
	if input.State != nil {
		customer.State = input.State
	}
	if input.Zip != nil {
		customer.Zip = input.Zip
	}
	if input.Notes != nil {
		customer.Notes = input.Notes
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return FromModel(updated), nil
}

// Delete removes a customer that has no orders. Customers referenced by any
// order are kept to preserve reporting history.
func (s *service) Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error {
	customer, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountOrders(ctx, customer.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer orders")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "customer has orders and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, customer.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

func (s *service) find(ctx context.Context, actor scope.Actor, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.policy.AccountFilter(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("customer")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customer")
	}
	return customer, nil
}
