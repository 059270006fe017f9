package mysql

import (
	"database/sql"
	"fmt"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db}
}

func (r *NotificationRepository) CreateNotification(notification *model.Notification) error {
	result, err := r.db.Exec(
		`INSERT INTO notifications (user_id, message, link, is_read, created_at)
		 VALUES (?, ?, ?, false, NOW())`,
		notification.UserID, notification.Message, notification.Link)
	if err != nil {
		util.Logger.Error("创建通知失败",
			zap.Error(err),
			zap.Int("user_id", notification.UserID))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	notification.ID = int(id)
	return nil
}

func (r *NotificationRepository) ListNotificationsByUser(userID int) ([]*model.Notification, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, message, COALESCE(link, ''), is_read, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		util.Logger.Error("查询通知列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
