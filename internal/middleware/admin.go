package middleware

import (
	"net/http"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminMiddleware 确保只有管理员可以访问某些路由
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			util.Logger.Warn("用户ID不存在")
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "需要认证",
				"error":   "User ID not found in context",
			})
			c.Abort()
			return
		}

		userType, _ := c.Get("user_type")
		if userType != model.UserTypeAdmin {
			util.Logger.Warn("非管理员访问",
				zap.Int("user_id", userID.(int)),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "需要管理员权限",
				"error":   "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
