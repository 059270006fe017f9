package service

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type RefundService struct {
	orderRepo        interfaces.OrderRepository
	userRepo         interfaces.UserRepository
	enrollmentRepo   interfaces.EnrollmentRepository
	txRunner         interfaces.TxRunner
	notifier         Notifier
	refundWindowDays int
}

func NewRefundService(
	orderRepo interfaces.OrderRepository,
	userRepo interfaces.UserRepository,
	enrollmentRepo interfaces.EnrollmentRepository,
	txRunner interfaces.TxRunner,
	notifier Notifier,
	refundWindowDays int,
) *RefundService {
	return &RefundService{
		orderRepo:        orderRepo,
		userRepo:         userRepo,
		enrollmentRepo:   enrollmentRepo,
		txRunner:         txRunner,
		notifier:         notifier,
		refundWindowDays: refundWindowDays,
	}
}

// GetRefund 查询某笔支付的退款记录，只允许付款人访问
func (s *RefundService) GetRefund(paymentID, requesterID int) (*model.Refund, error) {
	payment, err := s.orderRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load payment", err)
	}
	if payment == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "payment not found")
	}

	order, err := s.orderRepo.GetOrderByID(payment.OrderID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load order", err)
	}
	if order == nil || order.UserID != requesterID {
		return nil, serviceErrors.New(serviceErrors.ErrForbidden, "payment does not belong to the requesting user")
	}

	refund, err := s.orderRepo.GetRefundByPaymentID(paymentID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load refund", err)
	}
	if refund == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "no refund for this payment")
	}
	return refund, nil
}

// RequestRefund 受理全额退款申请
// 退款策略：窗口期内、所有课程零进度、每笔支付至多退一次
// 多课程订单不支持部分退款，任一课程有进度则整单拒绝
// 原支付消费的奖励不返还
func (s *RefundService) RequestRefund(paymentID, requesterID int, reason string) (*model.Refund, error) {
	payment, err := s.orderRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load payment", err)
	}
	if payment == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "payment not found")
	}

	order, err := s.orderRepo.GetOrderByID(payment.OrderID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load order", err)
	}
	if order == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "order not found")
	}
	if order.UserID != requesterID {
		return nil, serviceErrors.New(serviceErrors.ErrForbidden, "payment does not belong to the requesting user")
	}

	existing, err := s.orderRepo.GetRefundByPaymentID(paymentID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to check existing refund", err)
	}
	if existing != nil {
		return nil, serviceErrors.New(serviceErrors.ErrConflict, "refund already exists for this payment")
	}

	student, err := s.userRepo.FindFirstChild(requesterID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load student", err)
	}
	if student == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "no student account under this parent")
	}

	// 逐课检查进度：任何已开始学习的课程都会让整单退款失败
	enrollments := make([]*model.Enrollment, 0, len(order.Items))
	for _, item := range order.Items {
		enrollment, err := s.enrollmentRepo.GetEnrollment(student.ID, item.CourseID)
		if err != nil {
			return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load enrollment", err)
		}
		if enrollment == nil {
			return nil, serviceErrors.New(serviceErrors.ErrNotFound, "enrollment not found for ordered course")
		}
		if enrollment.ProgressRate > 0 {
			util.Logger.Info("退款被进度策略拒绝",
				zap.Int("payment_id", paymentID),
				zap.Int("course_id", item.CourseID),
				zap.Float64("progress_rate", enrollment.ProgressRate))
			return nil, serviceErrors.New(serviceErrors.ErrPolicyViolation, "course already started")
		}
		enrollments = append(enrollments, enrollment)
	}

	window := time.Duration(s.refundWindowDays) * 24 * time.Hour
	if time.Since(payment.PaidAt) > window {
		return nil, serviceErrors.New(serviceErrors.ErrPolicyViolation, "refund window exceeded")
	}

	refund := &model.Refund{
		PaymentID: paymentID,
		Amount:    payment.Amount, // 全额退款，无按比例折算
		Reason:    reason,
	}

	err = s.txRunner.RunInTx(func(tx *sql.Tx) error {
		if err := s.orderRepo.CreateRefund(tx, refund); err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to create refund", err)
		}
		for _, enrollment := range enrollments {
			if err := s.enrollmentRepo.UpdateEnrollmentStatus(tx, enrollment.ID, model.EnrollmentStatusRefundRequested); err != nil {
				return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to update enrollment status", err)
			}
		}
		cancelled, err := s.orderRepo.CancelOrder(tx, order.ID)
		if err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to cancel order", err)
		}
		if !cancelled {
			return serviceErrors.New(serviceErrors.ErrIllegalState, "order is not cancellable")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Logger.Info("退款受理成功",
		zap.Int("refund_id", refund.ID),
		zap.Int("payment_id", paymentID),
		zap.Float64("amount", refund.Amount))

	s.notifier.Notify(requesterID, fmt.Sprintf("订单 %s 的退款申请已受理", order.OrderNumber), fmt.Sprintf("/orders/%d", order.ID))

	return refund, nil
}
