package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusAssigned},
		{enums.OrderStatusPending, enums.OrderStatusCancelled},
		{enums.OrderStatusAssigned, enums.OrderStatusInTransit},
		{enums.OrderStatusAssigned, enums.OrderStatusCancelled},
		{enums.OrderStatusInTransit, enums.OrderStatusDelivered},
		{enums.OrderStatusInTransit, enums.OrderStatusReturned},
		{enums.OrderStatusInTransit, enums.OrderStatusCancelled},
		{enums.OrderStatusDelivered, enums.OrderStatusReturned},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusInTransit},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusAssigned, enums.OrderStatusDelivered},
		{enums.OrderStatusAssigned, enums.OrderStatusReturned},
		{enums.OrderStatusDelivered, enums.OrderStatusPending},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusPending},
		{enums.OrderStatusCancelled, enums.OrderStatusAssigned},
		{enums.OrderStatusReturned, enums.OrderStatusInTransit},
		{enums.OrderStatusPending, enums.OrderStatusPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatusesHaveNoExitsExceptDeliveredReturn(t *testing.T) {
	assert.Empty(t, transitions[enums.OrderStatusCancelled])
	assert.Empty(t, transitions[enums.OrderStatusReturned])
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusReturned}, transitions[enums.OrderStatusDelivered])
}
