package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// CreateEmployeeInput is the payload accepted when creating an employee.
type CreateEmployeeInput struct {
	EmployeeNumber string           `json:"employee_number" validate:"required"`
	Email          string           `json:"email" validate:"required,email"`
	FirstName      string           `json:"first_name" validate:"required"`
	LastName       string           `json:"last_name" validate:"required"`
	Phone          *string          `json:"phone,omitempty"`
	Status         *string          `json:"status,omitempty"`
	LicenseNumber  *string          `json:"license_number,omitempty"`
	LicenseState   *string          `json:"license_state,omitempty"`
	LicenseExpiry  *time.Time       `json:"license_expiry,omitempty"`
	PayRate        *decimal.Decimal `json:"pay_rate,omitempty"`
}

// UpdateEmployeeInput carries a partial update; nil fields are untouched.
type UpdateEmployeeInput struct {
	EmployeeNumber *string          `json:"employee_number,omitempty"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email"`
	FirstName      *string          `json:"first_name,omitempty"`
	LastName       *string          `json:"last_name,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	Status         *string          `json:"status,omitempty"`
	LicenseNumber  *string          `json:"license_number,omitempty"`
	LicenseState   *string          `json:"license_state,omitempty"`
	LicenseExpiry  *time.Time       `json:"license_expiry,omitempty"`
	PayRate        *decimal.Decimal `json:"pay_rate,omitempty"`
}

// Service defines the behavior needed by the employees controller.
type Service interface {
	Create(ctx context.Context, actor scope.Actor, input CreateEmployeeInput) (*EmployeeDTO, error)
	Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*EmployeeDTO, error)
	List(ctx context.Context, actor scope.Actor, params pagination.Params) (*EmployeePage, error)
	Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateEmployeeInput) (*EmployeeDTO, error)
	Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Employee, error)
	List(ctx context.Context, accountID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountVehicleAssignments(ctx context.Context, employeeID uuid.UUID) (int64, error)
}

type service struct {
	repo   repository
	policy scope.Policy
}

// NewService constructs an employees service.
func NewService(repo repository, policy scope.Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employees repository is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{repo: repo, policy: policy}, nil
}

func (s *service) Create(ctx context.Context, actor scope.Actor, input CreateEmployeeInput) (*EmployeeDTO, error) {
	number := strings.TrimSpace(input.EmployeeNumber)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee_number is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	status := enums.EmployeeStatusActive
	if input.Status != nil {
		parsed, err := enums.ParseEmployeeStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		status = parsed
	}

	payRate := decimal.Zero
	if input.PayRate != nil {
		if input.PayRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pay_rate cannot be negative")
		}
		payRate = *input.PayRate
	}

	employee := &models.Employee{
		CreatedByID:    actor.UserID,
		EmployeeNumber: number,
		Email:          email,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          input.Phone,
		Status:         status,
		LicenseNumber:  input.LicenseNumber,
		LicenseState:   input.LicenseState,
		LicenseExpiry:  input.LicenseExpiry,
		PayRate:        payRate,
	}
	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(employee), nil
}

func (s *service) List(ctx context.Context, actor scope.Actor, params pagination.Params) (*EmployeePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, s.policy.AccountFilter(actor), cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}

	page := &EmployeePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	page.Items = FromModels(rows)
	return page, nil
}

func (s *service) Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateEmployeeInput) (*EmployeeDTO, error) {
	employee, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.EmployeeNumber != nil {
		number := strings.TrimSpace(*input.EmployeeNumber)
		if number == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee_number cannot be empty")
		}
		employee.EmployeeNumber = number
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		employee.Email = email
	}
	if input.FirstName != nil {
		employee.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		employee.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		employee.Phone = input.Phone
	}
	if input.Status != nil {
		parsed, err := enums.ParseEmployeeStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		employee.Status = parsed
	}
	if input.LicenseNumber != nil {
		employee.LicenseNumber = input.LicenseNumber
	}
	if input.LicenseState != nil {
		employee.LicenseState = input.LicenseState
	}
	if input.LicenseExpiry != nil {
		employee.LicenseExpiry = input.LicenseExpiry
	}
	if input.PayRate != nil {
		if input.PayRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pay_rate cannot be negative")
		}
		employee.PayRate = *input.PayRate
	}

	updated, err := s.repo.Update(ctx, employee)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
	}
	return FromModel(updated), nil
}

// Delete removes an employee that is not driving any vehicle.
func (s *service) Delete(ctx context.Context, actor scope.Actor, id uuid.UUID) error {
	employee, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountVehicleAssignments(ctx, employee.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vehicle assignments")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "employee is assigned to a vehicle")
	}

	if err := s.repo.Delete(ctx, employee.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete employee")
	}
	return nil
}

func (s *service) find(ctx context.Context, actor scope.Actor, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, s.policy.AccountFilter(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("employee")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find employee")
	}
	return employee, nil
}

// uniqueConflict maps the per-account unique constraints to conflict errors.
func uniqueConflict(err error) error {
	switch {
	case db.IsUniqueViolation(err, "employees_account_number_key"):
		return pkgerrors.New(pkgerrors.CodeConflict, "employee number already in use")
	case db.IsUniqueViolation(err, "employees_account_email_key"):
		return pkgerrors.New(pkgerrors.CodeConflict, "employee email already in use")
	default:
		return nil
	}
}
