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

type EnrollmentService struct {
	enrollmentRepo interfaces.EnrollmentRepository
	userRepo       interfaces.UserRepository
}

func NewEnrollmentService(
	enrollmentRepo interfaces.EnrollmentRepository,
	userRepo interfaces.UserRepository,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
	}
}

// EnsureEnrolled 为学生开通课程访问，幂等
// 支付重试再次执行时不会产生重复选课，也不报错
func (s *EnrollmentService) EnsureEnrolled(tx *sql.Tx, studentID, courseID int) error {
	existing, err := s.enrollmentRepo.GetEnrollmentTx(tx, studentID, courseID)
	if err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load enrollment", err)
	}
	if existing != nil {
		util.Logger.Info("选课记录已存在，跳过创建",
			zap.Int("student_id", studentID),
			zap.Int("course_id", courseID))
		return nil
	}

	student, err := s.userRepo.FindByID(studentID)
	if err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load student", err)
	}
	if student == nil {
		return serviceErrors.New(serviceErrors.ErrNotFound, "student not found")
	}
	if !student.IsStudent() {
		// 走到这里说明上游数据有问题，不是用户可恢复的错误
		return serviceErrors.New(serviceErrors.ErrInvalidInput, "enrollment requires a student account")
	}

	enrollment := &model.Enrollment{
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       model.EnrollmentStatusInProgress,
		ProgressRate: 0.00,
	}
	if err := s.enrollmentRepo.CreateEnrollment(tx, enrollment); err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to create enrollment", err)
	}
	return nil
}

// ApplyProgress 更新选课进度并套用完成规则
// 进度必须在 [0, 100] 内：进度值驱动退款资格判断，越界是硬错误
// 到达 100.00 时置为 COMPLETED 并记录完成时间，且只记录一次
// 只有 IN_PROGRESS 的选课会被置为 COMPLETED，退款中的选课不会被完成
func (s *EnrollmentService) ApplyProgress(tx *sql.Tx, enrollment *model.Enrollment, rate float64) error {
	if rate < 0 || rate > 100 {
		return serviceErrors.New(serviceErrors.ErrInvalidInput, "progress rate out of range")
	}

	enrollment.ProgressRate = rate
	if rate >= 100 && enrollment.Status == model.EnrollmentStatusInProgress {
		now := time.Now()
		enrollment.CompletedAt = &now
		enrollment.Status = model.EnrollmentStatusCompleted

		util.Logger.Info("课程学习完成",
			zap.Int("enrollment_id", enrollment.ID),
			zap.Int("student_id", enrollment.StudentID),
			zap.Int("course_id", enrollment.CourseID))
	}

	if err := s.enrollmentRepo.UpdateEnrollmentProgress(tx, enrollment); err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to update enrollment progress", err)
	}
	return nil
}

// ListEnrollments 获取用户视角的选课列表
// 学生看到自己的选课；家长看到名下所有子账号的选课汇总
func (s *EnrollmentService) ListEnrollments(userID int) ([]*model.Enrollment, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load user", err)
	}
	if user == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "user not found")
	}

	if user.UserType != model.UserTypeParent {
		enrollments, err := s.enrollmentRepo.ListEnrollmentsByStudent(userID)
		if err != nil {
			return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list enrollments", err)
		}
		return enrollments, nil
	}

	children, err := s.userRepo.ListChildren(userID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list children", err)
	}

	var all []*model.Enrollment
	for _, child := range children {
		enrollments, err := s.enrollmentRepo.ListEnrollmentsByStudent(child.ID)
		if err != nil {
			return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list enrollments", err)
		}
		all = append(all, enrollments...)
	}
	return all, nil
}
