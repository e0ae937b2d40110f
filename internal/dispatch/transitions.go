package dispatch

import (
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// transitions is the order lifecycle graph. Missing origin means terminal.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusAssigned,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusAssigned: {
		enums.OrderStatusInTransit,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusInTransit: {
		enums.OrderStatusDelivered,
		enums.OrderStatusReturned,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusReturned,
	},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
