package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder 创建订单及其行项目
// 先插入占位订单号获取自增ID，再用ID生成正式订单号
func (r *OrderRepository) CreateOrder(order *model.Order) error {
	util.Logger.Info("开始创建订单",
		zap.Int("user_id", order.UserID),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("item_count", len(order.Items)))

	if order.UserID == 0 || len(order.Items) == 0 {
		util.Logger.Error("订单参数验证失败",
			zap.Int("user_id", order.UserID),
			zap.Int("item_count", len(order.Items)))
		return fmt.Errorf("invalid order parameters")
	}

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}

	query := `INSERT INTO orders (order_number, user_id, total_amount, status, created_at, updated_at)
			  VALUES ('TEMP', ?, ?, ?, NOW(), NOW())`

	result, err := tx.Exec(query, order.UserID, order.TotalAmount, order.Status)
	if err != nil {
		util.Logger.Error("插入订单记录失败", zap.Error(err))
		return fmt.Errorf("failed to insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取订单ID失败", zap.Error(err))
		return fmt.Errorf("failed to get order ID: %w", err)
	}
	order.ID = int(id)

	// 生成并更新订单编号
	orderNumber := generateOrderNumber(order.ID)
	_, err = tx.Exec(`UPDATE orders SET order_number = ? WHERE id = ?`, orderNumber, order.ID)
	if err != nil {
		util.Logger.Error("更新订单编号失败",
			zap.Error(err),
			zap.String("order_number", orderNumber))
		return fmt.Errorf("failed to update order number: %w", err)
	}
	order.OrderNumber = orderNumber

	// 插入行项目，价格为下单时价格
	for _, item := range order.Items {
		itemResult, err := tx.Exec(
			`INSERT INTO order_items (order_id, course_id, price) VALUES (?, ?, ?)`,
			order.ID, item.CourseID, item.Price)
		if err != nil {
			util.Logger.Error("插入订单行项目失败",
				zap.Error(err),
				zap.Int("course_id", item.CourseID))
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		itemID, err := itemResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get order item ID: %w", err)
		}
		item.ID = int(itemID)
		item.OrderID = order.ID
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	util.Logger.Info("订单创建成功",
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber))
	return nil
}

// generateOrderNumber 生成订单编号
// 格式: ORD-年份-4位序号，例如: ORD-2026-0001
func generateOrderNumber(orderID int) string {
	year := time.Now().Year()
	return fmt.Sprintf("ORD-%d-%04d", year, orderID)
}

func (r *OrderRepository) GetOrderByID(id int) (*model.Order, error) {
	query := `SELECT id, order_number, user_id, total_amount, status, created_at, updated_at
			  FROM orders
			  WHERE id = ?`

	var order model.Order
	err := r.db.QueryRow(query, id).Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &order.TotalAmount,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询订单失败", zap.Error(err), zap.Int("order_id", id))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.listOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *OrderRepository) listOrderItems(orderID int) ([]*model.OrderItem, error) {
	rows, err := r.db.Query(
		`SELECT id, order_id, course_id, price FROM order_items WHERE order_id = ? ORDER BY id ASC`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CourseID, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) GetOrdersByUser(userID int) ([]*model.Order, error) {
	query := `SELECT id, order_number, user_id, total_amount, status, created_at, updated_at
			  FROM orders
			  WHERE user_id = ?
			  ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		util.Logger.Error("查询订单列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID, &order.OrderNumber, &order.UserID, &order.TotalAmount,
			&order.Status, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := r.listOrderItems(order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

// CompleteOrder 条件更新：仅当订单处于 PENDING 时置为 COMPLETED
// 并发的第二次支付尝试不会命中任何行
func (r *OrderRepository) CompleteOrder(tx *sql.Tx, orderID int) (bool, error) {
	result, err := tx.Exec(
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		model.OrderStatusCompleted, orderID, model.OrderStatusPending)
	if err != nil {
		util.Logger.Error("更新订单状态失败", zap.Error(err), zap.Int("order_id", orderID))
		return false, fmt.Errorf("failed to complete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CancelOrder 条件更新：仅当订单处于 COMPLETED 时置为 CANCELLED
func (r *OrderRepository) CancelOrder(tx *sql.Tx, orderID int) (bool, error) {
	result, err := tx.Exec(
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		model.OrderStatusCancelled, orderID, model.OrderStatusCompleted)
	if err != nil {
		util.Logger.Error("取消订单失败", zap.Error(err), zap.Int("order_id", orderID))
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OrderRepository) CreatePayment(tx *sql.Tx, payment *model.Payment) error {
	result, err := tx.Exec(
		`INSERT INTO payments (order_id, method, amount, transaction_id, reward_id, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.OrderID, payment.Method, payment.Amount,
		payment.TransactionID, payment.RewardID, payment.PaidAt)
	if err != nil {
		util.Logger.Error("创建支付记录失败",
			zap.Error(err),
			zap.Int("order_id", payment.OrderID))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get payment ID: %w", err)
	}
	payment.ID = int(id)
	return nil
}

func (r *OrderRepository) GetPaymentByID(id int) (*model.Payment, error) {
	return r.scanPayment(
		`SELECT id, order_id, method, amount, transaction_id, reward_id, paid_at
		 FROM payments WHERE id = ?`, id)
}

func (r *OrderRepository) GetPaymentByOrderID(orderID int) (*model.Payment, error) {
	return r.scanPayment(
		`SELECT id, order_id, method, amount, transaction_id, reward_id, paid_at
		 FROM payments WHERE order_id = ?`, orderID)
}

func (r *OrderRepository) scanPayment(query string, arg int) (*model.Payment, error) {
	var payment model.Payment
	var rewardID sql.NullInt64
	err := r.db.QueryRow(query, arg).Scan(
		&payment.ID, &payment.OrderID, &payment.Method, &payment.Amount,
		&payment.TransactionID, &rewardID, &payment.PaidAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询支付记录失败", zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if rewardID.Valid {
		rid := int(rewardID.Int64)
		payment.RewardID = &rid
	}
	return &payment, nil
}

func (r *OrderRepository) CreateRefund(tx *sql.Tx, refund *model.Refund) error {
	result, err := tx.Exec(
		`INSERT INTO refunds (payment_id, amount, reason, created_at) VALUES (?, ?, ?, NOW())`,
		refund.PaymentID, refund.Amount, refund.Reason)
	if err != nil {
		util.Logger.Error("创建退款记录失败",
			zap.Error(err),
			zap.Int("payment_id", refund.PaymentID))
		return fmt.Errorf("failed to create refund: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get refund ID: %w", err)
	}
	refund.ID = int(id)
	return nil
}

func (r *OrderRepository) GetRefundByPaymentID(paymentID int) (*model.Refund, error) {
	query := `SELECT id, payment_id, amount, reason, created_at
			  FROM refunds
			  WHERE payment_id = ?`

	var refund model.Refund
	err := r.db.QueryRow(query, paymentID).Scan(
		&refund.ID, &refund.PaymentID, &refund.Amount, &refund.Reason, &refund.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询退款记录失败", zap.Error(err), zap.Int("payment_id", paymentID))
		return nil, fmt.Errorf("failed to get refund: %w", err)
	}
	return &refund, nil
}
