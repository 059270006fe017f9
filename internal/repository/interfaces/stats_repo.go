package interfaces

import (
	"time"

	"synacoding-backend/internal/model"
)

type StatsRepository interface {
	// GetRevenueBetween 统计 [from, to) 区间内的支付总额与笔数
	GetRevenueBetween(from, to time.Time) (float64, int, error)
	GetPopularCourses(limit int) ([]*model.CourseStats, error)
	// ListRecentRefunds 按时间倒序获取最近的退款记录
	ListRecentRefunds(limit int) ([]*model.Refund, error)
}
