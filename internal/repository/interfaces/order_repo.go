package interfaces

import (
	"database/sql"

	"synacoding-backend/internal/model"
)

type OrderRepository interface {
	CreateOrder(order *model.Order) error
	GetOrderByID(id int) (*model.Order, error)
	GetOrdersByUser(userID int) ([]*model.Order, error)

	// CompleteOrder 仅当订单处于 PENDING 时置为 COMPLETED，返回是否生效
	CompleteOrder(tx *sql.Tx, orderID int) (bool, error)
	// CancelOrder 仅当订单处于 COMPLETED 时置为 CANCELLED，返回是否生效
	CancelOrder(tx *sql.Tx, orderID int) (bool, error)

	CreatePayment(tx *sql.Tx, payment *model.Payment) error
	GetPaymentByID(id int) (*model.Payment, error)
	GetPaymentByOrderID(orderID int) (*model.Payment, error)

	CreateRefund(tx *sql.Tx, refund *model.Refund) error
	GetRefundByPaymentID(paymentID int) (*model.Refund, error)
}
