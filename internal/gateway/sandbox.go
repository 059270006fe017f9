package gateway

import (
	"fmt"

	"synacoding-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SandboxGateway 沙箱网关实现，开发与测试环境使用
// 不发起真实扣款，直接返回生成的交易号
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

func (g *SandboxGateway) Charge(orderNumber string, amount float64, method string) (*ChargeResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("invalid charge amount: %.2f", amount)
	}

	transactionID := fmt.Sprintf("SBX-%s", uuid.NewString())

	util.Logger.Info("沙箱网关扣款成功",
		zap.String("order_number", orderNumber),
		zap.Float64("amount", amount),
		zap.String("method", method),
		zap.String("transaction_id", transactionID))

	return &ChargeResult{TransactionID: transactionID}, nil
}
