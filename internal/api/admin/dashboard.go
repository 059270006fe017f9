package admin

import (
	"net/http"
	"strconv"
	"time"

	"synacoding-backend/internal/errors"
	"synacoding-backend/internal/middleware"
	"synacoding-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statsService *service.StatsService
	errorMonitor *middleware.ErrorMonitor
}

func NewDashboardHandler(statsService *service.StatsService, errorMonitor *middleware.ErrorMonitor) *DashboardHandler {
	return &DashboardHandler{statsService, errorMonitor}
}

// GetRevenue 查询区间营收统计
// from/to 为 RFC3339 时间，缺省为最近30天
func (h *DashboardHandler) GetRevenue(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "Invalid 'from' timestamp",
			})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "Invalid 'to' timestamp",
			})
			return
		}
		to = parsed
	}

	report, err := h.statsService.GetRevenue(from, to)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"revenue": report},
	})
}

// GetPopularCourses 查询热门课程排行
func (h *DashboardHandler) GetPopularCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	stats, err := h.statsService.GetPopularCourses(limit)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"courses": stats},
	})
}

// ListRefunds 查询最近的退款记录
func (h *DashboardHandler) ListRefunds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	refunds, err := h.statsService.ListRecentRefunds(limit)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"refunds": refunds},
	})
}

// GetErrorStats 查询按错误码聚合的请求错误计数
func (h *DashboardHandler) GetErrorStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"error_counts": h.errorMonitor.GetErrorCounts()},
	})
}
