package interfaces

import "synacoding-backend/internal/model"

type NotificationRepository interface {
	CreateNotification(notification *model.Notification) error
	ListNotificationsByUser(userID int) ([]*model.Notification, error)
}
