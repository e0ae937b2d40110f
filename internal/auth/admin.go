package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/users"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// RejectRequest optionally records why a registration was declined.
type RejectRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// AdminService exposes the registration review workflow. Only admins reach
// these methods; the routes enforce the role.
type AdminService interface {
	ListPending(ctx context.Context) ([]*users.UserDTO, error)
	Approve(ctx context.Context, actor scope.Actor, userID uuid.UUID) (*users.UserDTO, error)
	Reject(ctx context.Context, actor scope.Actor, userID uuid.UUID, req RejectRequest) (*users.UserDTO, error)
}

// AdminServiceParams packages the dependencies for the review workflow.
type AdminServiceParams struct {
	DB     *db.Client
	Outbox *outbox.Service
}

type adminService struct {
	db     *db.Client
	outbox *outbox.Service
}

// NewAdminService builds the registration review service.
func NewAdminService(params AdminServiceParams) (AdminService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &adminService{db: params.DB, outbox: params.Outbox}, nil
}

func (s *adminService) ListPending(ctx context.Context) ([]*users.UserDTO, error) {
	repo := users.NewRepository(s.db.DB())
	rows, err := repo.ListByStatus(ctx, enums.UserStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending users")
	}
	return users.FromModels(rows), nil
}

func (s *adminService) Approve(ctx context.Context, actor scope.Actor, userID uuid.UUID) (*users.UserDTO, error) {
	return s.review(ctx, actor, userID, enums.UserStatusApproved, nil)
}

func (s *adminService) Reject(ctx context.Context, actor scope.Actor, userID uuid.UUID, req RejectRequest) (*users.UserDTO, error) {
	return s.review(ctx, actor, userID, enums.UserStatusRejected, req.Reason)
}

// review moves a pending user to approved or rejected and queues the matching
// outbox event in the same transaction. Only pending users may be reviewed.
func (s *adminService) review(ctx context.Context, actor scope.Actor, userID uuid.UUID, next enums.UserStatus, reason *string) (*users.UserDTO, error) {
	var reviewed *users.UserDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope.NotFound("user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
		}
		if user.Status != enums.UserStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "user is not pending review")
		}

		if err := repo.UpdateStatus(ctx, userID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
		}
		user.Status = next

		event := outbox.DomainEvent{
			AggregateType: enums.OutboxAggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Version:       1,
		}
		switch next {
		case enums.UserStatusApproved:
			event.EventType = enums.OutboxEventUserApproved
			event.Data = payloads.UserApprovedEvent{
				UserID:     user.ID,
				Email:      user.Email,
				ApprovedBy: actor.UserID,
			}
		case enums.UserStatusRejected:
			event.EventType = enums.OutboxEventUserRejected
			event.Data = payloads.UserRejectedEvent{
				UserID:     user.ID,
				Email:      user.Email,
				RejectedBy: actor.UserID,
				Reason:     derefTrimmed(reason),
			}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue review event")
		}

		reviewed = users.FromModel(user)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return reviewed, nil
}

func derefTrimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
