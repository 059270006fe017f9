package notification

import (
	"net/http"

	"synacoding-backend/internal/errors"
	"synacoding-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService}
}

// ListNotifications 获取当前用户的通知列表
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, _ := c.Get("user_id")

	notifications, err := h.notificationService.ListNotifications(userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"notifications": notifications},
	})
}
