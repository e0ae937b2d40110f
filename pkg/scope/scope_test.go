package scope

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

func TestAccountOwnedFiltersEveryRole(t *testing.T) {
	policy := AccountOwned()

	for _, role := range []enums.UserRole{
		enums.UserRoleAdmin,
		enums.UserRoleDispatcher,
		enums.UserRoleViewer,
	} {
		actor := Actor{UserID: uuid.New(), Role: role}
		filter := policy.AccountFilter(actor)
		if filter == nil {
			t.Fatalf("role %s must not receive cross-account visibility", role)
		}
		if *filter != actor.UserID {
			t.Fatalf("role %s expected filter %s, got %s", role, actor.UserID, *filter)
		}
	}
}

func TestNotFoundUsesNotFoundCode(t *testing.T) {
	err := NotFound("order")
	if errors.As(err).Code() != errors.CodeNotFound {
		t.Fatalf("expected not found code, got %s", errors.As(err).Code())
	}
	if err.Message() != "order not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}
