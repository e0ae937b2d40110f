package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
)

const defaultStalePendingAfter = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type pendingOrderReader interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

// StalePendingOrdersJobParams configure the stale pending order sweep.
type StalePendingOrdersJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Orders     pendingOrderReader
	Outbox     outboxEmitter
	StaleAfter time.Duration
}

// NewStalePendingOrdersJob builds the cron job that nudges dispatchers about
// orders sitting in PENDING past the configured age.
func NewStalePendingOrdersJob(params StalePendingOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	staleAfter := params.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStalePendingAfter
	}
	return &stalePendingOrdersJob{
		logg:       params.Logger,
		db:         params.DB,
		orders:     params.Orders,
		outbox:     params.Outbox,
		staleAfter: staleAfter,
		now:        time.Now,
	}, nil
}

type stalePendingOrdersJob struct {
	logg       *logger.Logger
	db         txRunner
	orders     pendingOrderReader
	outbox     outboxEmitter
	staleAfter time.Duration
	now        func() time.Time
}

func (j *stalePendingOrdersJob) Name() string { return "stale-pending-orders" }

func (j *stalePendingOrdersJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.staleAfter)
	stale, err := j.orders.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	nudged := 0
	for _, order := range stale {
		if err := j.emitNudge(ctx, order, now); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		nudged++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff": cutoff,
		"stale":  len(stale),
		"nudged": nudged,
		"failed": len(errs),
	})
	j.logg.Info(logCtx, "stale pending order sweep complete")
	return multierr.Combine(errs...)
}

// emitNudge queues at most one nudge per order; re-runs are no-ops thanks to
// the outbox existence check.
func (j *stalePendingOrdersJob) emitNudge(ctx context.Context, order models.Order, now time.Time) error {
	if order.Customer == nil {
		return fmt.Errorf("customer not loaded")
	}
	accountID := order.Customer.CreatedByID
	pendingDays := int(now.Sub(order.CreatedAt).Hours() / 24)

	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderPendingNudge,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OrderPendingNudgeEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				AccountID:   accountID,
				PendingDays: pendingDays,
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
