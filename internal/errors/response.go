package errors

import (
	"net/http"

	serviceErrors "synacoding-backend/internal/service/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// SuccessResponse 定义成功响应结构
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,
	ErrGateway:  http.StatusBadGateway,

	// 认证错误 (2000-2999)
	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrInvalidToken: http.StatusUnauthorized,
	ErrTokenExpired: http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceConflict: http.StatusConflict,

	// 业务错误 (4000-4999)
	ErrOrderNotFound:  http.StatusNotFound,
	ErrRewardUnusable: http.StatusConflict,
	ErrRefundPolicy:   http.StatusUnprocessableEntity,
	ErrIllegalState:   http.StatusConflict,
}

// 服务层错误码与HTTP状态码映射
var serviceStatusMap = map[serviceErrors.ErrorCode]int{
	serviceErrors.ErrDatabase:        http.StatusInternalServerError,
	serviceErrors.ErrNotFound:        http.StatusNotFound,
	serviceErrors.ErrInvalidInput:    http.StatusBadRequest,
	serviceErrors.ErrForbidden:       http.StatusForbidden,
	serviceErrors.ErrConflict:        http.StatusConflict,
	serviceErrors.ErrPolicyViolation: http.StatusUnprocessableEntity,
	serviceErrors.ErrIllegalState:    http.StatusConflict,
	serviceErrors.ErrInternal:        http.StatusInternalServerError,
	serviceErrors.ErrThirdParty:      http.StatusBadGateway,
}

// HandleError 统一处理错误响应
func HandleError(c *gin.Context, err error) {
	if appErr, ok := err.(*AppError); ok {
		status := errorStatusMap[appErr.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}

		resp := ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
		}

		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}

		c.JSON(status, resp)
		return
	}

	// 处理非 AppError 类型的错误
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    ErrInternal,
		Message: "Internal Server Error",
		Error:   err.Error(),
	})
}

// HandleServiceError 将服务层错误映射为HTTP响应
func HandleServiceError(c *gin.Context, err error) {
	if serviceErrors.IsServiceError(err) {
		code := serviceErrors.GetErrorCode(err)
		status := serviceStatusMap[code]
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{
			"code":    int(code),
			"message": err.Error(),
		})
		return
	}
	HandleError(c, err)
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	resp := SuccessResponse{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusOK, resp)
}
