package enums

import "fmt"

// OutboxEventType identifies a domain event recorded in the outbox table.
type OutboxEventType string

const (
	OutboxEventOrderCreated       OutboxEventType = "order.created"
	OutboxEventOrderAssigned      OutboxEventType = "order.assigned"
	OutboxEventOrderStatusChanged OutboxEventType = "order.status_changed"
	OutboxEventOrderPendingNudge  OutboxEventType = "order.pending_nudge"
	OutboxEventUserRegistered     OutboxEventType = "user.registered"
	OutboxEventUserApproved       OutboxEventType = "user.approved"
	OutboxEventUserRejected       OutboxEventType = "user.rejected"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventOrderCreated,
	OutboxEventOrderAssigned,
	OutboxEventOrderStatusChanged,
	OutboxEventOrderPendingNudge,
	OutboxEventUserRegistered,
	OutboxEventUserApproved,
	OutboxEventUserRejected,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateOrder OutboxAggregateType = "order"
	OutboxAggregateUser  OutboxAggregateType = "user"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateOrder,
	OutboxAggregateUser,
}

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// OutboxDLQErrorReason classifies why an outbox event was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

// String implements fmt.Stringer.
func (o OutboxDLQErrorReason) String() string {
	return string(o)
}
