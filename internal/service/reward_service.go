package service

import (
	"database/sql"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type RewardService struct {
	rewardRepo interfaces.RewardRepository
}

func NewRewardService(rewardRepo interfaces.RewardRepository) *RewardService {
	return &RewardService{
		rewardRepo: rewardRepo,
	}
}

// Grant 发放一条未使用的奖励
// 发放额度由外部策略（如评价奖励配置）决定，这里只校验金额为正
func (s *RewardService) Grant(userID int, rewardType string, amount float64, expiresAt *time.Time) (*model.Reward, error) {
	if rewardType != model.RewardTypePoint && rewardType != model.RewardTypeCoupon {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "unknown reward type")
	}
	if amount <= 0 {
		return nil, serviceErrors.New(serviceErrors.ErrInvalidInput, "reward amount must be positive")
	}

	reward := &model.Reward{
		UserID:    userID,
		Type:      rewardType,
		Amount:    amount,
		ExpiresAt: expiresAt,
		Used:      false,
	}

	if err := s.rewardRepo.CreateReward(reward); err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to create reward", err)
	}

	util.Logger.Info("奖励发放成功",
		zap.Int("reward_id", reward.ID),
		zap.Int("user_id", userID),
		zap.String("type", rewardType),
		zap.Float64("amount", amount))

	return reward, nil
}

// ValidateAndConsume 校验并消费奖励，返回抵扣金额
// 这是奖励的唯一变更路径：一经消费不可恢复，退款也不返还
func (s *RewardService) ValidateAndConsume(tx *sql.Tx, rewardID, requesterID int, expectedType string) (float64, error) {
	reward, err := s.rewardRepo.GetRewardForUpdate(tx, rewardID)
	if err != nil {
		return 0, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load reward", err)
	}
	if reward == nil {
		return 0, serviceErrors.New(serviceErrors.ErrNotFound, "reward not found")
	}
	if reward.UserID != requesterID {
		util.Logger.Warn("奖励不属于请求用户",
			zap.Int("reward_id", rewardID),
			zap.Int("owner_id", reward.UserID),
			zap.Int("requester_id", requesterID))
		return 0, serviceErrors.New(serviceErrors.ErrForbidden, "reward does not belong to the requesting user")
	}
	if reward.Type != expectedType {
		return 0, serviceErrors.New(serviceErrors.ErrInvalidInput, "reward type mismatch")
	}
	if reward.Used {
		return 0, serviceErrors.New(serviceErrors.ErrConflict, "reward already used")
	}
	if reward.IsExpired(time.Now()) {
		return 0, serviceErrors.New(serviceErrors.ErrPolicyViolation, "reward expired")
	}

	if err := s.rewardRepo.MarkRewardUsed(tx, rewardID, time.Now()); err != nil {
		return 0, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to consume reward", err)
	}

	util.Logger.Info("奖励消费成功",
		zap.Int("reward_id", rewardID),
		zap.Int("user_id", requesterID),
		zap.Float64("amount", reward.Amount))

	return reward.Amount, nil
}

// SweepExpired 清理已过期且未使用的奖励，返回删除行数
// 由定时任务触发，幂等；只命中逻辑上已死亡的行，可与消费并发运行
func (s *RewardService) SweepExpired(now time.Time) (int64, error) {
	deleted, err := s.rewardRepo.DeleteExpiredUnused(now)
	if err != nil {
		return 0, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to sweep expired rewards", err)
	}

	if deleted > 0 {
		util.Logger.Info("过期奖励清理完成", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// GetReward 查询单条奖励，只允许奖励所有者访问
func (s *RewardService) GetReward(rewardID, requesterID int) (*model.Reward, error) {
	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load reward", err)
	}
	if reward == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "reward not found")
	}
	if reward.UserID != requesterID {
		return nil, serviceErrors.New(serviceErrors.ErrForbidden, "reward does not belong to the requesting user")
	}
	return reward, nil
}

// ListRewards 获取用户的奖励列表
func (s *RewardService) ListRewards(userID int) ([]*model.Reward, error) {
	rewards, err := s.rewardRepo.ListRewardsByUser(userID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list rewards", err)
	}
	return rewards, nil
}
