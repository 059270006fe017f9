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

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService}
}

// CreateOrder 创建课程购买订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input struct {
		CourseIDs []int `json:"course_ids" binding:"required,min=1"`
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

	order, err := h.orderService.CreateOrder(userID.(int), input.CourseIDs)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"data":    gin.H{"order": order},
		"message": "Order created successfully",
	})
}

// ProcessPayment 处理订单支付
func (h *OrderHandler) ProcessPayment(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid order ID",
		})
		return
	}

	var input struct {
		Method    string `json:"method" binding:"required"`
		StudentID int    `json:"student_id" binding:"required"`
		RewardID  *int   `json:"reward_id"` // 积分奖励
		CouponID  *int   `json:"coupon_id"` // 优惠券
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

	util.Logger.Info("开始处理支付",
		zap.Int("order_id", orderID),
		zap.Int("payer_id", userID.(int)),
		zap.Int("student_id", input.StudentID),
		zap.String("method", input.Method))

	payment, err := h.orderService.ProcessPayment(orderID, userID.(int), input.StudentID, input.Method, input.RewardID, input.CouponID)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"data":    gin.H{"payment": payment},
		"message": "Payment processed successfully",
	})
}

// GetOrder 查询订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid order ID",
		})
		return
	}

	userID, _ := c.Get("user_id")

	order, payment, err := h.orderService.GetOrder(orderID, userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"order":   order,
			"payment": payment,
		},
	})
}

// ListOrders 获取当前用户的订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, _ := c.Get("user_id")

	orders, err := h.orderService.ListOrders(userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"orders": orders},
	})
}
