package employees

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

type fakeRepo struct {
	rows        map[uuid.UUID]*models.Employee
	assignments map[uuid.UUID]int64
	createErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:        map[uuid.UUID]*models.Employee{},
		assignments: map[uuid.UUID]int64{},
	}
}

func (f *fakeRepo) Create(_ context.Context, employee *models.Employee) (*models.Employee, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	employee.ID = uuid.New()
	f.rows[employee.ID] = employee
	return employee, nil
}

func (f *fakeRepo) FindByID(_ context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Employee, error) {
	employee, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if accountID != nil && employee.CreatedByID != *accountID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *employee
	return &clone, nil
}

func (f *fakeRepo) List(_ context.Context, accountID *uuid.UUID, _ *pagination.Cursor, limit int) ([]models.Employee, error) {
	var out []models.Employee
	for _, e := range f.rows {
		if accountID != nil && e.CreatedByID != *accountID {
			continue
		}
		out = append(out, *e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, employee *models.Employee) (*models.Employee, error) {
	f.rows[employee.ID] = employee
	return employee, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) CountVehicleAssignments(_ context.Context, employeeID uuid.UUID) (int64, error) {
	return f.assignments[employeeID], nil
}

func dispatcher() scope.Actor {
	return scope.Actor{UserID: uuid.New(), Role: enums.UserRoleDispatcher}
}

func TestCreateEmployeeDefaultsToActive(t *testing.T) {
	svc, err := NewService(newFakeRepo(), scope.AccountOwned())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), dispatcher(), CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "Driver@Example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.EmployeeStatusActive, created.Status)
	assert.Equal(t, "driver@example.com", created.Email)
	assert.True(t, created.PayRate.IsZero())
}

func TestCreateEmployeeDuplicateNumberConflicts(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "employees_account_number_key"`)
	svc, err := NewService(repo, scope.AccountOwned())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dispatcher(), CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "driver@example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreateEmployeeInvalidStatus(t *testing.T) {
	svc, err := NewService(newFakeRepo(), scope.AccountOwned())
	require.NoError(t, err)

	bogus := "RETIRED"
	_, err = svc.Create(context.Background(), dispatcher(), CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "driver@example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
		Status:         &bogus,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetEmployeeOutOfScopeIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo, scope.AccountOwned())
	require.NoError(t, err)

	owner := dispatcher()
	created, err := svc.Create(context.Background(), owner, CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "driver@example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), dispatcher(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteAssignedEmployeeConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo, scope.AccountOwned())
	require.NoError(t, err)
	actor := dispatcher()

	created, err := svc.Create(context.Background(), actor, CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "driver@example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
	})
	require.NoError(t, err)
	repo.assignments[created.ID] = 1

	err = svc.Delete(context.Background(), actor, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateEmployeeStatus(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo, scope.AccountOwned())
	require.NoError(t, err)
	actor := dispatcher()

	created, err := svc.Create(context.Background(), actor, CreateEmployeeInput{
		EmployeeNumber: "EMP-100",
		Email:          "driver@example.com",
		FirstName:      "Ray",
		LastName:       "Lopez",
	})
	require.NoError(t, err)

	onLeave := enums.EmployeeStatusOnLeave.String()
	updated, err := svc.Update(context.Background(), actor, created.ID, UpdateEmployeeInput{Status: &onLeave})
	require.NoError(t, err)
	assert.Equal(t, enums.EmployeeStatusOnLeave, updated.Status)
}
