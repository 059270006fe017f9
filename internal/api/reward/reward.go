package reward

import (
	"net/http"
	"strconv"
	"time"

	"synacoding-backend/config"
	"synacoding-backend/internal/errors"
	"synacoding-backend/internal/model"
	"synacoding-backend/internal/service"
	"synacoding-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RewardHandler struct {
	rewardService *service.RewardService
}

func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{rewardService}
}

// ListMyRewards 获取当前用户的奖励列表
func (h *RewardHandler) ListMyRewards(c *gin.Context) {
	userID, _ := c.Get("user_id")

	rewards, err := h.rewardService.ListRewards(userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"rewards": rewards},
	})
}

// GetReward 查询单条奖励详情
func (h *RewardHandler) GetReward(c *gin.Context) {
	rewardID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid reward ID",
		})
		return
	}

	userID, _ := c.Get("user_id")

	reward, err := h.rewardService.GetReward(rewardID, userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"reward": reward},
	})
}

// GrantReward 管理员发放奖励
// 过期时间必须晚于当前时刻（future_date 校验器）
func (h *RewardHandler) GrantReward(c *gin.Context) {
	var input struct {
		UserID    int        `json:"user_id" binding:"required"`
		Type      string     `json:"type" binding:"required,oneof=POINT COUPON"`
		Amount    float64    `json:"amount" binding:"required,gt=0"`
		ExpiresAt *time.Time `json:"expires_at" binding:"omitempty,future_date"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Logger.Error("无效的请求数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	reward, err := h.rewardService.Grant(input.UserID, input.Type, input.Amount, input.ExpiresAt)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"data":    gin.H{"reward": reward},
		"message": "Reward granted successfully",
	})
}

// GrantReviewBonus 发放课程评价奖励
// 金额来自配置的评价奖励策略，由评价审核通过后的后台操作触发
func (h *RewardHandler) GrantReviewBonus(c *gin.Context) {
	var input struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Logger.Error("无效的请求数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	expiresAt := time.Now().AddDate(0, 0, 90)
	reward, err := h.rewardService.Grant(input.UserID, model.RewardTypePoint, config.AppConfig.ReviewRewardPoint, &expiresAt)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"data":    gin.H{"reward": reward},
		"message": "Review bonus granted",
	})
}
