package model

import "time"

// 选课状态常量
const (
	EnrollmentStatusPendingPayment  = "PENDING_PAYMENT"
	EnrollmentStatusInProgress      = "IN_PROGRESS"
	EnrollmentStatusCompleted       = "COMPLETED"
	EnrollmentStatusRefundRequested = "REFUND_REQUESTED"
	EnrollmentStatusRefunded        = "REFUNDED"
)

// Enrollment 选课模型，(学生, 课程) 唯一
// ProgressRate 取值 [0.00, 100.00]，由讲座完成情况重新计算得出
type Enrollment struct {
	ID           int        `json:"id"`
	StudentID    int        `json:"student_id"`
	CourseID     int        `json:"course_id"`
	Status       string     `json:"status"`
	ProgressRate float64    `json:"progress_rate"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActive 判断选课是否处于可学习状态
// 进入退款流程（REFUND_REQUESTED / REFUNDED）后课程访问即被冻结
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusInProgress || e.Status == EnrollmentStatusCompleted
}

// LectureProgress 讲座观看进度模型，(学生, 讲座) 唯一
// Completed 一旦为 true 不会被后续更新清除
type LectureProgress struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	LectureID     int       `json:"lecture_id"`
	ViewedSeconds int       `json:"viewed_seconds"`
	Completed     bool      `json:"completed"`
	UpdatedAt     time.Time `json:"updated_at"`
}
