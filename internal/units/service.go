package units

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// UpdateUnitInput carries the board fields a dispatcher may edit. Availability
// is not here; it mirrors the vehicle status and only vehicle updates and the
// dispatch workflow move it.
type UpdateUnitInput struct {
	Location      *string `json:"location,omitempty"`
	Zip           *string `json:"zip,omitempty"`
	AvailableTime *string `json:"available_time,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Dimensions    *string `json:"dimensions,omitempty"`
	Payload       *string `json:"payload,omitempty"`
}

// Service defines the behavior needed by the units controller.
type Service interface {
	List(ctx context.Context, actor scope.Actor) ([]*UnitDTO, error)
	Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*UnitDTO, error)
	Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateUnitInput) (*UnitDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, accountID *uuid.UUID, id uuid.UUID) (*models.Unit, error)
	ListActive(ctx context.Context, accountID *uuid.UUID) ([]models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) (*models.Unit, error)
}

type service struct {
	repo   repository
	policy scope.Policy
}

// NewService constructs a units service.
func NewService(repo repository, policy scope.Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("units repository is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{repo: repo, policy: policy}, nil
}

func (s *service) List(ctx context.Context, actor scope.Actor) ([]*UnitDTO, error) {
	rows, err := s.repo.ListActive(ctx, s.policy.AccountFilter(actor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, actor scope.Actor, id uuid.UUID) (*UnitDTO, error) {
	unit, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(unit), nil
}

func (s *service) Update(ctx context.Context, actor scope.Actor, id uuid.UUID, input UpdateUnitInput) (*UnitDTO, error) {
	unit, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !unit.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unit is inactive")
	}

	if input.Location != nil {
		unit.Location = input.Location
	}
	if input.Zip != nil {
		unit.Zip = input.Zip
	}
	if input.AvailableTime != nil {
		unit.AvailableTime = input.AvailableTime
	}
	if input.Notes != nil {
		unit.Notes = input.Notes
	}
	if input.Dimensions != nil {
		unit.Dimensions = input.Dimensions
	}
	if input.Payload != nil {
		unit.Payload = input.Payload
	}

	updated, err := s.repo.Update(ctx, unit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update unit")
	}
	return FromModel(updated), nil
}

func (s *service) find(ctx context.Context, actor scope.Actor, id uuid.UUID) (*models.Unit, error) {
	unit, err := s.repo.FindByID(ctx, s.policy.AccountFilter(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.NotFound("unit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find unit")
	}
	return unit, nil
}
