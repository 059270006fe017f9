package service

import (
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
)

// RevenueReport 营收统计读模型（管理后台仪表盘用）
type RevenueReport struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalRevenue float64   `json:"total_revenue"`
	PaymentCount int       `json:"payment_count"`
}

type StatsService struct {
	statsRepo interfaces.StatsRepository
}

func NewStatsService(statsRepo interfaces.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetRevenue 统计区间内的支付营收，已退款（订单取消）的支付不计入
func (s *StatsService) GetRevenue(from, to time.Time) (*RevenueReport, error) {
	if !from.Before(to) {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "invalid time range")
	}

	total, count, err := s.statsRepo.GetRevenueBetween(from, to)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to get revenue", err)
	}

	return &RevenueReport{
		From:         from,
		To:           to,
		TotalRevenue: total,
		PaymentCount: count,
	}, nil
}

// ListRecentRefunds 获取最近的退款记录（管理后台用）
func (s *StatsService) ListRecentRefunds(limit int) ([]*model.Refund, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	refunds, err := s.statsRepo.ListRecentRefunds(limit)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list refunds", err)
	}
	return refunds, nil
}

// GetPopularCourses 按选课人数排序的热门课程
func (s *StatsService) GetPopularCourses(limit int) ([]*model.CourseStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	stats, err := s.statsRepo.GetPopularCourses(limit)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to get popular courses", err)
	}
	return stats, nil
}
