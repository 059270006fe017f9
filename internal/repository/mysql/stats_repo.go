package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db}
}

// GetRevenueBetween 统计 [from, to) 区间内的支付总额与笔数
// 已取消订单的支付不计入（退款已发生）
func (r *StatsRepository) GetRevenueBetween(from, to time.Time) (float64, int, error) {
	query := `SELECT COALESCE(SUM(p.amount), 0), COUNT(*)
			  FROM payments p
			  JOIN orders o ON p.order_id = o.id
			  WHERE p.paid_at >= ? AND p.paid_at < ? AND o.status = ?`

	var total float64
	var count int
	err := r.db.QueryRow(query, from, to, model.OrderStatusCompleted).Scan(&total, &count)
	if err != nil {
		util.Logger.Error("统计营收失败", zap.Error(err))
		return 0, 0, fmt.Errorf("failed to get revenue: %w", err)
	}
	return total, count, nil
}

// ListRecentRefunds 按时间倒序获取最近的退款记录
func (r *StatsRepository) ListRecentRefunds(limit int) ([]*model.Refund, error) {
	rows, err := r.db.Query(
		`SELECT id, payment_id, amount, reason, created_at
		 FROM refunds
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		util.Logger.Error("查询退款列表失败", zap.Error(err))
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*model.Refund
	for rows.Next() {
		var refund model.Refund
		if err := rows.Scan(&refund.ID, &refund.PaymentID, &refund.Amount, &refund.Reason, &refund.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refund: %w", err)
		}
		refunds = append(refunds, &refund)
	}
	return refunds, rows.Err()
}

// GetPopularCourses 按选课人数排序的热门课程
func (r *StatsRepository) GetPopularCourses(limit int) ([]*model.CourseStats, error) {
	query := `SELECT c.id, c.title, COUNT(e.id) AS enrollment_count
			  FROM courses c
			  JOIN enrollments e ON e.course_id = c.id
			  GROUP BY c.id, c.title
			  ORDER BY enrollment_count DESC
			  LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		util.Logger.Error("查询热门课程失败", zap.Error(err))
		return nil, fmt.Errorf("failed to get popular courses: %w", err)
	}
	defer rows.Close()

	var stats []*model.CourseStats
	for rows.Next() {
		var s model.CourseStats
		if err := rows.Scan(&s.CourseID, &s.Title, &s.EnrollmentCount); err != nil {
			return nil, fmt.Errorf("failed to scan course stats: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}
