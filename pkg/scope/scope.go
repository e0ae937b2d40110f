package scope

import (
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

// Actor is the authenticated caller as seen by the data layer.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Policy decides whose rows an actor may read or mutate. Repositories apply
// the returned filter to every query; services never bypass it.
type Policy interface {
	// AccountFilter returns the owner id queries must be restricted to.
	// A nil return grants cross-account visibility.
	AccountFilter(actor Actor) *uuid.UUID
}

type accountOwned struct{}

// AccountOwned is the default policy: every actor, regardless of role, sees
// only rows created by their own account.
func AccountOwned() Policy {
	return accountOwned{}
}

func (accountOwned) AccountFilter(actor Actor) *uuid.UUID {
	id := actor.UserID
	return &id
}

// NotFound is the uniform error for ids that are absent or outside the
// caller's scope. Out-of-scope rows are never acknowledged to exist.
func NotFound(resource string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, resource+" not found")
}
