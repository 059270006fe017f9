package model

import "time"

// 奖励类型常量
const (
	RewardTypePoint  = "POINT"
	RewardTypeCoupon = "COUPON"
)

// Reward 奖励模型（积分或优惠券）
// 一次性使用：unused → used 只发生一次，消费后不可恢复
type Reward struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	Type      string     `json:"type"`
	Amount    float64    `json:"amount"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsExpired 判断奖励在给定时刻是否已过期
func (r *Reward) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}
