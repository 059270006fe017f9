package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type RewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) *RewardRepository {
	return &RewardRepository{db}
}

func (r *RewardRepository) CreateReward(reward *model.Reward) error {
	util.Logger.Info("开始发放奖励",
		zap.Int("user_id", reward.UserID),
		zap.String("type", reward.Type),
		zap.Float64("amount", reward.Amount))

	reward.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO rewards (user_id, type, amount, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, false, ?)`,
		reward.UserID, reward.Type, reward.Amount, reward.ExpiresAt, reward.CreatedAt)
	if err != nil {
		util.Logger.Error("创建奖励失败", zap.Error(err), zap.Int("user_id", reward.UserID))
		return fmt.Errorf("failed to create reward: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reward ID: %w", err)
	}
	reward.ID = int(id)
	return nil
}

func (r *RewardRepository) GetRewardByID(id int) (*model.Reward, error) {
	return scanReward(r.db.QueryRow(
		`SELECT id, user_id, type, amount, expires_at, used, used_at, created_at
		 FROM rewards WHERE id = ?`, id))
}

// GetRewardForUpdate 在事务内加行锁读取奖励
// 并发消费同一奖励时，第二个事务在此处等待并随后看到 used = true
func (r *RewardRepository) GetRewardForUpdate(tx *sql.Tx, id int) (*model.Reward, error) {
	return scanReward(tx.QueryRow(
		`SELECT id, user_id, type, amount, expires_at, used, used_at, created_at
		 FROM rewards WHERE id = ? FOR UPDATE`, id))
}

func scanReward(row *sql.Row) (*model.Reward, error) {
	var reward model.Reward
	var expiresAt, usedAt sql.NullTime
	err := row.Scan(
		&reward.ID, &reward.UserID, &reward.Type, &reward.Amount,
		&expiresAt, &reward.Used, &usedAt, &reward.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询奖励失败", zap.Error(err))
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	if expiresAt.Valid {
		reward.ExpiresAt = &expiresAt.Time
	}
	if usedAt.Valid {
		reward.UsedAt = &usedAt.Time
	}
	return &reward, nil
}

func (r *RewardRepository) MarkRewardUsed(tx *sql.Tx, id int, usedAt time.Time) error {
	_, err := tx.Exec(
		`UPDATE rewards SET used = true, used_at = ? WHERE id = ?`,
		usedAt, id)
	if err != nil {
		util.Logger.Error("标记奖励已使用失败", zap.Error(err), zap.Int("reward_id", id))
		return fmt.Errorf("failed to mark reward used: %w", err)
	}
	return nil
}

func (r *RewardRepository) ListRewardsByUser(userID int) ([]*model.Reward, error) {
	query := `SELECT id, user_id, type, amount, expires_at, used, used_at, created_at
			  FROM rewards
			  WHERE user_id = ?
			  ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		util.Logger.Error("查询奖励列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*model.Reward
	for rows.Next() {
		var reward model.Reward
		var expiresAt, usedAt sql.NullTime
		err := rows.Scan(
			&reward.ID, &reward.UserID, &reward.Type, &reward.Amount,
			&expiresAt, &reward.Used, &usedAt, &reward.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		if expiresAt.Valid {
			reward.ExpiresAt = &expiresAt.Time
		}
		if usedAt.Valid {
			reward.UsedAt = &usedAt.Time
		}
		rewards = append(rewards, &reward)
	}
	return rewards, rows.Err()
}

// DeleteExpiredUnused 清理已过期且未使用的奖励
// 已使用的奖励保留作审计，绝不删除
func (r *RewardRepository) DeleteExpiredUnused(now time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM rewards WHERE expires_at IS NOT NULL AND expires_at < ? AND used = false`,
		now)
	if err != nil {
		util.Logger.Error("清理过期奖励失败", zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired rewards: %w", err)
	}
	return result.RowsAffected()
}
