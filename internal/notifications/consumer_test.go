package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
)

type capturingRepo struct {
	created []*models.Notification
	err     error
}

func (r *capturingRepo) Create(_ context.Context, notification *models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, notification)
	return nil
}

type stubAdminLister struct {
	admins []models.User
}

func (s *stubAdminLister) ListByRole(_ context.Context, role enums.UserRole) ([]models.User, error) {
	if role != enums.UserRoleAdmin {
		return nil, nil
	}
	return s.admins, nil
}

type capturingSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (s *capturingSender) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestConsumer(repo *capturingRepo, users *stubAdminLister, sender *capturingSender) *Consumer {
	return &Consumer{
		repo:   repo,
		users:  users,
		sender: sender,
		logg:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleOrderStatusChanged(t *testing.T) {
	repo := &capturingRepo{}
	c := newTestConsumer(repo, &stubAdminLister{}, &capturingSender{})
	accountID := uuid.New()

	err := c.handle(context.Background(), enums.OutboxEventOrderStatusChanged, mustMarshal(t, payloads.OrderStatusChangedEvent{
		OrderID:     uuid.New(),
		OrderNumber: "1001",
		AccountID:   accountID,
		FromStatus:  enums.OrderStatusAssigned,
		ToStatus:    enums.OrderStatusInTransit,
	}), context.Background())
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	row := repo.created[0]
	assert.Equal(t, accountID, row.AccountID)
	assert.Equal(t, enums.NotificationOrderStatusChanged, row.Type)
	assert.Equal(t, "Order 1001 moved from ASSIGNED to IN_TRANSIT.", row.Message)
}

func TestHandleUserRegisteredNotifiesEveryAdmin(t *testing.T) {
	repo := &capturingRepo{}
	sender := &capturingSender{}
	admins := &stubAdminLister{admins: []models.User{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}}
	c := newTestConsumer(repo, admins, sender)

	err := c.handle(context.Background(), enums.OutboxEventUserRegistered, mustMarshal(t, payloads.UserRegisteredEvent{
		UserID:    uuid.New(),
		Email:     "rosa@example.com",
		FirstName: "Rosa",
		LastName:  "Marquez",
	}), context.Background())
	require.NoError(t, err)

	require.Len(t, repo.created, 2)
	for i, admin := range admins.admins {
		assert.Equal(t, admin.ID, repo.created[i].AccountID)
		assert.Equal(t, enums.NotificationUserRegistered, repo.created[i].Type)
	}

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "rosa@example.com", sender.sent[0].to)
	assert.Equal(t, "Registration received", sender.sent[0].subject)
}

func TestHandleUserRejectedIncludesReason(t *testing.T) {
	repo := &capturingRepo{}
	sender := &capturingSender{}
	c := newTestConsumer(repo, &stubAdminLister{}, sender)
	userID := uuid.New()

	err := c.handle(context.Background(), enums.OutboxEventUserRejected, mustMarshal(t, payloads.UserRejectedEvent{
		UserID: userID,
		Email:  "rosa@example.com",
		Reason: "incomplete paperwork",
	}), context.Background())
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, userID, repo.created[0].AccountID)
	assert.Contains(t, repo.created[0].Message, "incomplete paperwork")
	require.Len(t, sender.sent, 1)
}

func TestEmailFailureDoesNotFailHandling(t *testing.T) {
	repo := &capturingRepo{}
	sender := &capturingSender{err: errors.New("smtp down")}
	c := newTestConsumer(repo, &stubAdminLister{}, sender)

	err := c.handle(context.Background(), enums.OutboxEventUserApproved, mustMarshal(t, payloads.UserApprovedEvent{
		UserID: uuid.New(),
		Email:  "rosa@example.com",
	}), context.Background())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestRowFailureFailsHandling(t *testing.T) {
	repo := &capturingRepo{err: errors.New("db down")}
	c := newTestConsumer(repo, &stubAdminLister{}, &capturingSender{})

	err := c.handle(context.Background(), enums.OutboxEventOrderCreated, mustMarshal(t, payloads.OrderCreatedEvent{
		OrderID:     uuid.New(),
		OrderNumber: "1001",
		AccountID:   uuid.New(),
	}), context.Background())
	require.Error(t, err)
}
