package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeRequestSubmitted NotificationType = "request_submitted"
	NotificationTypeRequestApproved  NotificationType = "request_approved"
	NotificationTypeRequestRejected  NotificationType = "request_rejected"
	NotificationTypeRequestFulfilled NotificationType = "request_fulfilled"
	NotificationTypeCommentAdded     NotificationType = "comment_added"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeRequestSubmitted,
	NotificationTypeRequestApproved,
	NotificationTypeRequestRejected,
	NotificationTypeRequestFulfilled,
	NotificationTypeCommentAdded,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
