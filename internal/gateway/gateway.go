package gateway

// ChargeResult 支付网关扣款结果
type ChargeResult struct {
	TransactionID string
}

// PaymentGateway 外部支付网关抽象
// 真实网关（PG社）的对接在部署环境中替换实现，核心只依赖此接口
type PaymentGateway interface {
	Charge(orderNumber string, amount float64, method string) (*ChargeResult, error)
}
