package model

import "time"

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order 课程购买订单模型
// 订单一经创建不可修改，金额为下单时各课程价格之和
type Order struct {
	ID          int          `json:"id"`
	OrderNumber string       `json:"order_number"`
	UserID      int          `json:"user_id"` // 付款人（家长）
	TotalAmount float64      `json:"total_amount"`
	Status      string       `json:"status"`
	Items       []*OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// OrderItem 订单行项目
// Price 为下单时的课程价格，课程改价不影响已有订单
type OrderItem struct {
	ID       int     `json:"id"`
	OrderID  int     `json:"order_id"`
	CourseID int     `json:"course_id"`
	Price    float64 `json:"price"`
}

// 支付方式常量
const (
	PaymentMethodCard         = "CARD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

// Payment 支付记录模型，与已完成订单一一对应
type Payment struct {
	ID            int       `json:"id"`
	OrderID       int       `json:"order_id"`
	Method        string    `json:"method"`
	Amount        float64   `json:"amount"` // 折扣后的实际支付金额
	TransactionID string    `json:"transaction_id"`
	RewardID      *int      `json:"reward_id,omitempty"` // 本次支付消费的奖励
	PaidAt        time.Time `json:"paid_at"`
}

// Refund 退款记录模型，与支付一一对应，创建即终态
type Refund struct {
	ID        int       `json:"id"`
	PaymentID int       `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
