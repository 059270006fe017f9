package service

import (
	"database/sql"

	"synacoding-backend/internal/model"
)

// 服务间协作接口
// 支付流程跨越奖励、选课、通知三个领域，通过窄接口协作便于单元测试

// RewardConsumer 在事务内消费一条奖励并返回抵扣金额
type RewardConsumer interface {
	ValidateAndConsume(tx *sql.Tx, rewardID, requesterID int, expectedType string) (float64, error)
}

// EnrollmentActivator 幂等地为学生开通课程访问
type EnrollmentActivator interface {
	EnsureEnrolled(tx *sql.Tx, studentID, courseID int) error
}

// ProgressApplier 更新选课进度并套用完成规则
type ProgressApplier interface {
	ApplyProgress(tx *sql.Tx, enrollment *model.Enrollment, rate float64) error
}

// Notifier 事务提交后的通知投递，失败不影响主流程
type Notifier interface {
	Notify(userID int, message, link string)
}
