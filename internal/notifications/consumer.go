package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/email"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/idempotency"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
)

const dispatchNotificationConsumer = "dispatch-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type adminLister interface {
	ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error)
}

// Consumer turns published domain events into notification rows and
// best-effort email. Email failures are logged and never fail the message.
type Consumer struct {
	repo         repository
	users        adminLister
	sender       email.Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the dispatch notification consumer.
func NewConsumer(repo repository, users adminLister, sender email.Sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		users:        users,
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, dispatchNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, dispatchNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.OutboxEventOrderCreated:
		return c.handleOrderCreated(ctx, data)
	case enums.OutboxEventOrderAssigned:
		return c.handleOrderAssigned(ctx, data)
	case enums.OutboxEventOrderStatusChanged:
		return c.handleOrderStatusChanged(ctx, data)
	case enums.OutboxEventOrderPendingNudge:
		return c.handleOrderPendingNudge(ctx, data)
	case enums.OutboxEventUserRegistered:
		return c.handleUserRegistered(ctx, data, logCtx)
	case enums.OutboxEventUserApproved:
		return c.handleUserApproved(ctx, data, logCtx)
	case enums.OutboxEventUserRejected:
		return c.handleUserRejected(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) handleOrderCreated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing order.created payload: %w", err)
	}
	link := "/orders/" + payload.OrderID.String()
	return c.repo.Create(ctx, &models.Notification{
		AccountID: payload.AccountID,
		Type:      enums.NotificationOrderCreated,
		Title:     "New order",
		Message:   fmt.Sprintf("Order %s was created.", payload.OrderNumber),
		Link:      &link,
	})
}

func (c *Consumer) handleOrderAssigned(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderAssignedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing order.assigned payload: %w", err)
	}
	link := "/dispatch/track/" + payload.OrderID.String()
	return c.repo.Create(ctx, &models.Notification{
		AccountID: payload.AccountID,
		Type:      enums.NotificationOrderAssigned,
		Title:     "Order assigned",
		Message:   fmt.Sprintf("Order %s was assigned to a vehicle and driver.", payload.OrderNumber),
		Link:      &link,
	})
}

func (c *Consumer) handleOrderStatusChanged(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing order.status_changed payload: %w", err)
	}
	link := "/dispatch/track/" + payload.OrderID.String()
	return c.repo.Create(ctx, &models.Notification{
		AccountID: payload.AccountID,
		Type:      enums.NotificationOrderStatusChanged,
		Title:     "Order status updated",
		Message:   fmt.Sprintf("Order %s moved from %s to %s.", payload.OrderNumber, payload.FromStatus, payload.ToStatus),
		Link:      &link,
	})
}

func (c *Consumer) handleOrderPendingNudge(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderPendingNudgeEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing order.pending_nudge payload: %w", err)
	}
	link := "/orders/" + payload.OrderID.String()
	return c.repo.Create(ctx, &models.Notification{
		AccountID: payload.AccountID,
		Type:      enums.NotificationOrderPendingNudge,
		Title:     "Order still pending",
		Message:   fmt.Sprintf("Order %s has been waiting for assignment for %d days.", payload.OrderNumber, payload.PendingDays),
		Link:      &link,
	})
}

func (c *Consumer) handleUserRegistered(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.UserRegisteredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing user.registered payload: %w", err)
	}

	admins, err := c.users.ListByRole(ctx, enums.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}
	link := "/admin/users/pending"
	for _, admin := range admins {
		notification := &models.Notification{
			AccountID: admin.ID,
			Type:      enums.NotificationUserRegistered,
			Title:     "New registration",
			Message:   fmt.Sprintf("%s %s (%s) registered and is awaiting review.", payload.FirstName, payload.LastName, payload.Email),
			Link:      &link,
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}

	c.sendMail(ctx, logCtx, payload.Email, "Registration received",
		fmt.Sprintf("Hi %s,\n\nYour FleetDesk registration was received and is awaiting review. You will get another email once an administrator has looked at it.\n", payload.FirstName))
	return nil
}

func (c *Consumer) handleUserApproved(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.UserApprovedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing user.approved payload: %w", err)
	}

	if err := c.repo.Create(ctx, &models.Notification{
		AccountID: payload.UserID,
		Type:      enums.NotificationUserApproved,
		Title:     "Account approved",
		Message:   "Your account was approved. You can now sign in.",
	}); err != nil {
		return err
	}

	c.sendMail(ctx, logCtx, payload.Email, "Your FleetDesk account was approved",
		"Your account was approved. You can now sign in and start dispatching.\n")
	return nil
}

func (c *Consumer) handleUserRejected(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.UserRejectedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing user.rejected payload: %w", err)
	}

	message := "Your account registration was rejected."
	if payload.Reason != "" {
		message = fmt.Sprintf("Your account registration was rejected. Reason: %s", payload.Reason)
	}
	if err := c.repo.Create(ctx, &models.Notification{
		AccountID: payload.UserID,
		Type:      enums.NotificationUserRejected,
		Title:     "Account rejected",
		Message:   message,
	}); err != nil {
		return err
	}

	c.sendMail(ctx, logCtx, payload.Email, "Your FleetDesk registration was rejected", message+"\n")
	return nil
}

// sendMail is fire and forget: a delivery failure is logged, never returned.
func (c *Consumer) sendMail(ctx context.Context, logCtx context.Context, to, subject, body string) {
	if err := c.sender.Send(ctx, to, subject, body); err != nil {
		c.logg.Error(logCtx, "email delivery failed", err)
	}
}
