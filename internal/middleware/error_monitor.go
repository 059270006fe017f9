package middleware

import (
	"sync"

	"synacoding-backend/internal/errors"
	serviceErrors "synacoding-backend/internal/service/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitor 按错误码统计请求错误，管理后台可查询
type ErrorMonitor struct {
	errorCounts map[serviceErrors.ErrorCode]int
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[serviceErrors.ErrorCode]int),
	}
}

func (m *ErrorMonitor) RecordError(err error) {
	if serviceErrors.IsServiceError(err) {
		m.mu.Lock()
		m.errorCounts[serviceErrors.GetErrorCode(err)]++
		m.mu.Unlock()
	}
}

func (m *ErrorMonitor) GetErrorCounts() map[serviceErrors.ErrorCode]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[serviceErrors.ErrorCode]int)
	for code, count := range m.errorCounts {
		counts[code] = count
	}
	return counts
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				monitor.RecordError(e.Err)
				// 记录错误日志
				if serviceErrors.IsServiceError(e.Err) {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(serviceErrors.GetErrorCode(e.Err))),
						zap.String("error_message", e.Err.Error()),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				} else if appErr, ok := e.Err.(*errors.AppError); ok {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(appErr.Code)),
						zap.String("error_message", appErr.Message),
						zap.Error(appErr.Err),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				}
			}
		}
	}
}
