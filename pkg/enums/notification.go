package enums

import "fmt"

// NotificationType categorizes in-app notifications produced by the worker.
type NotificationType string

const (
	NotificationUserRegistered     NotificationType = "user_registered"
	NotificationUserApproved       NotificationType = "user_approved"
	NotificationUserRejected       NotificationType = "user_rejected"
	NotificationOrderCreated       NotificationType = "order_created"
	NotificationOrderAssigned      NotificationType = "order_assigned"
	NotificationOrderStatusChanged NotificationType = "order_status_changed"
	NotificationOrderPendingNudge  NotificationType = "order_pending_nudge"
)

var validNotificationTypes = []NotificationType{
	NotificationUserRegistered,
	NotificationUserApproved,
	NotificationUserRejected,
	NotificationOrderCreated,
	NotificationOrderAssigned,
	NotificationOrderStatusChanged,
	NotificationOrderPendingNudge,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
