package enums

import "fmt"

// NotificationType classifies the entity a notification points at.
type NotificationType string

const (
	NotificationTypeOrder    NotificationType = "order"
	NotificationTypeRoute    NotificationType = "route"
	NotificationTypeDispatch NotificationType = "dispatch"
	NotificationTypeVehicle  NotificationType = "vehicle"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypeRoute,
	NotificationTypeDispatch,
	NotificationTypeVehicle,
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
