package service

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/gateway"
	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type OrderService struct {
	orderRepo  interfaces.OrderRepository
	courseRepo interfaces.CourseRepository
	userRepo   interfaces.UserRepository
	txRunner   interfaces.TxRunner
	gateway    gateway.PaymentGateway
	rewards    RewardConsumer
	enrollment EnrollmentActivator
	notifier   Notifier
}

func NewOrderService(
	orderRepo interfaces.OrderRepository,
	courseRepo interfaces.CourseRepository,
	userRepo interfaces.UserRepository,
	txRunner interfaces.TxRunner,
	gw gateway.PaymentGateway,
	rewards RewardConsumer,
	enrollment EnrollmentActivator,
	notifier Notifier,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		txRunner:   txRunner,
		gateway:    gw,
		rewards:    rewards,
		enrollment: enrollment,
		notifier:   notifier,
	}
}

// CreateOrder 创建课程购买订单
// 订单总价为下单时各课程价格之和，行项目价格同时冻结，课程改价不影响已有订单
func (s *OrderService) CreateOrder(payerID int, courseIDs []int) (*model.Order, error) {
	if len(courseIDs) == 0 {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "order requires at least one course")
	}

	var total float64
	items := make([]*model.OrderItem, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		course, err := s.courseRepo.GetCourseByID(courseID)
		if err != nil {
			return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load course", err)
		}
		if course == nil {
			return nil, serviceErrors.New(serviceErrors.ErrNotFound, fmt.Sprintf("course %d not found", courseID))
		}
		total += course.Price
		items = append(items, &model.OrderItem{
			CourseID: courseID,
			Price:    course.Price,
		})
	}

	order := &model.Order{
		UserID:      payerID,
		TotalAmount: total,
		Status:      model.OrderStatusPending,
		Items:       items,
	}
	if err := s.orderRepo.CreateOrder(order); err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to create order", err)
	}

	util.Logger.Info("订单创建成功",
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("payer_id", payerID),
		zap.Float64("total", total))

	return order, nil
}

// GetOrder 查询订单详情，只允许订单所有者访问
// 已支付的订单一并返回支付记录，未支付时支付记录为 nil
func (s *OrderService) GetOrder(orderID, requesterID int) (*model.Order, *model.Payment, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load order", err)
	}
	if order == nil {
		return nil, nil, serviceErrors.New(serviceErrors.ErrNotFound, "order not found")
	}
	if order.UserID != requesterID {
		return nil, nil, serviceErrors.New(serviceErrors.ErrForbidden, "order does not belong to the requesting user")
	}

	payment, err := s.orderRepo.GetPaymentByOrderID(orderID)
	if err != nil {
		return nil, nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load payment", err)
	}
	return order, payment, nil
}

// ListOrders 获取用户的订单列表
func (s *OrderService) ListOrders(userID int) ([]*model.Order, error) {
	orders, err := s.orderRepo.GetOrdersByUser(userID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list orders", err)
	}
	return orders, nil
}

// ProcessPayment 处理订单支付，整个流程在一个事务内完成
// 校验 → 消费奖励 → 完成订单 → 网关扣款 → 落支付记录 → 逐课开通选课
// 任一步失败整体回滚：不会出现奖励被消费但没有支付，或订单完成但没有选课
//
// 折扣为一次性定额抵扣，最多一个抵扣工具（积分或优惠券二选一）
// 实付金额 = max(0, 订单总额 - 抵扣金额)，超额奖励不产生负扣款或余额
func (s *OrderService) ProcessPayment(orderID, payerID, studentID int, method string, pointRewardID, couponID *int) (*model.Payment, error) {
	if method != model.PaymentMethodCard && method != model.PaymentMethodBankTransfer {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "unsupported payment method")
	}
	if pointRewardID != nil && couponID != nil {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "at most one discount instrument per payment")
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load order", err)
	}
	if order == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "order not found")
	}
	if order.UserID != payerID {
		return nil, serviceErrors.New(serviceErrors.ErrForbidden, "order does not belong to the requesting user")
	}

	// 支付绑定到单个受益学生，学生必须是付款家长的子账号
	student, err := s.userRepo.FindByID(studentID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load student", err)
	}
	if student == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "student not found")
	}
	if !student.IsChildOf(payerID) {
		util.Logger.Warn("学生不属于付款家长",
			zap.Int("student_id", studentID),
			zap.Int("payer_id", payerID))
		return nil, serviceErrors.New(serviceErrors.ErrForbidden, "student is not a child of the payer")
	}

	var payment *model.Payment
	err = s.txRunner.RunInTx(func(tx *sql.Tx) error {
		var discount float64
		var usedRewardID *int

		if pointRewardID != nil {
			discount, err = s.rewards.ValidateAndConsume(tx, *pointRewardID, payerID, model.RewardTypePoint)
			if err != nil {
				return err
			}
			usedRewardID = pointRewardID
		} else if couponID != nil {
			discount, err = s.rewards.ValidateAndConsume(tx, *couponID, payerID, model.RewardTypeCoupon)
			if err != nil {
				return err
			}
			usedRewardID = couponID
		}

		finalAmount := order.TotalAmount - discount
		if finalAmount < 0 {
			finalAmount = 0
		}

		// 先做条件状态迁移再扣款：并发的第二笔支付在这里就会失败，不会重复扣款
		completed, err := s.orderRepo.CompleteOrder(tx, order.ID)
		if err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to complete order", err)
		}
		if !completed {
			return serviceErrors.New(serviceErrors.ErrIllegalState, "order is not payable")
		}

		result, err := s.gateway.Charge(order.OrderNumber, finalAmount, method)
		if err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrThirdParty, "payment gateway charge failed", err)
		}

		payment = &model.Payment{
			OrderID:       order.ID,
			Method:        method,
			Amount:        finalAmount,
			TransactionID: result.TransactionID,
			RewardID:      usedRewardID,
			PaidAt:        time.Now(),
		}
		if err := s.orderRepo.CreatePayment(tx, payment); err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to create payment", err)
		}

		for _, item := range order.Items {
			if err := s.enrollment.EnsureEnrolled(tx, studentID, item.CourseID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Logger.Info("支付处理成功",
		zap.Int("order_id", order.ID),
		zap.Int("payment_id", payment.ID),
		zap.Float64("amount", payment.Amount),
		zap.String("transaction_id", payment.TransactionID))

	s.notifier.Notify(payerID, fmt.Sprintf("订单 %s 支付成功", order.OrderNumber), fmt.Sprintf("/orders/%d", order.ID))

	return payment, nil
}
