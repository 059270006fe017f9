package order

import (
	"net/http"
	"strconv"

	"synacoding-backend/internal/errors"
	"synacoding-backend/internal/service"
	"synacoding-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RefundHandler struct {
	refundService *service.RefundService
}

func NewRefundHandler(refundService *service.RefundService) *RefundHandler {
	return &RefundHandler{refundService}
}

// RequestRefund 申请全额退款
func (h *RefundHandler) RequestRefund(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid payment ID",
		})
		return
	}

	var input struct {
		Reason string `json:"reason" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Logger.Error("无效的请求数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")

	refund, err := h.refundService.RequestRefund(paymentID, userID.(int), input.Reason)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"data":    gin.H{"refund": refund},
		"message": "退款申请已受理",
	})
}

// GetRefundStatus 查询退款状态
func (h *RefundHandler) GetRefundStatus(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid payment ID",
		})
		return
	}

	userID, _ := c.Get("user_id")

	refund, err := h.refundService.GetRefund(paymentID, userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"refund": refund},
	})
}
