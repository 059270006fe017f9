package interfaces

import (
	"database/sql"
	"time"

	"synacoding-backend/internal/model"
)

type RewardRepository interface {
	CreateReward(reward *model.Reward) error
	GetRewardByID(id int) (*model.Reward, error)
	ListRewardsByUser(userID int) ([]*model.Reward, error)

	// GetRewardForUpdate 在事务内加行锁读取奖励，用于消费时的并发串行化
	GetRewardForUpdate(tx *sql.Tx, id int) (*model.Reward, error)
	MarkRewardUsed(tx *sql.Tx, id int, usedAt time.Time) error

	// DeleteExpiredUnused 删除已过期且未使用的奖励，返回删除行数
	DeleteExpiredUnused(now time.Time) (int64, error)
}
