package service

import (
	"testing"
	"time"

	"synacoding-backend/internal/model"
	serviceErrors "synacoding-backend/internal/service/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestEnsureEnrolledIdempotent 测试重复开通选课为幂等空操作
func TestEnsureEnrolledIdempotent(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	existing := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress}
	mockEnrollRepo.On("GetEnrollmentTx", mock.Anything, 2, 7).Return(existing, nil)

	err := service.EnsureEnrolled(nil, 2, 7)
	assert.NoError(t, err)
	mockEnrollRepo.AssertNotCalled(t, "CreateEnrollment", mock.Anything, mock.Anything)
}

// TestEnsureEnrolledCreates 测试首次开通选课
func TestEnsureEnrolledCreates(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	student := &model.User{ID: 2, UserType: model.UserTypeStudent}
	mockEnrollRepo.On("GetEnrollmentTx", mock.Anything, 2, 7).Return(nil, nil)
	mockUserRepo.On("FindByID", 2).Return(student, nil)
	mockEnrollRepo.On("CreateEnrollment", mock.Anything, mock.MatchedBy(func(e *model.Enrollment) bool {
		return e.StudentID == 2 && e.CourseID == 7 &&
			e.Status == model.EnrollmentStatusInProgress && e.ProgressRate == 0
	})).Return(nil)

	err := service.EnsureEnrolled(nil, 2, 7)
	assert.NoError(t, err)
	mockEnrollRepo.AssertExpectations(t)
}

// TestEnsureEnrolledRequiresStudent 测试非学生账号不能选课
func TestEnsureEnrolledRequiresStudent(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	parent := &model.User{ID: 1, UserType: model.UserTypeParent}
	mockEnrollRepo.On("GetEnrollmentTx", mock.Anything, 1, 7).Return(nil, nil)
	mockUserRepo.On("FindByID", 1).Return(parent, nil)

	err := service.EnsureEnrolled(nil, 1, 7)
	assert.Error(t, err)
	assert.Equal(t, serviceErrors.ErrInvalidInput, serviceErrors.GetErrorCode(err))
}

// TestApplyProgressCompletion 测试进度到达100时的完成规则
func TestApplyProgressCompletion(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress}
	mockEnrollRepo.On("UpdateEnrollmentProgress", mock.Anything, enrollment).Return(nil)

	err := service.ApplyProgress(nil, enrollment, 100)
	assert.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusCompleted, enrollment.Status)
	assert.NotNil(t, enrollment.CompletedAt)

	// 完成时间只记录一次
	firstCompletedAt := enrollment.CompletedAt
	time.Sleep(10 * time.Millisecond)
	err = service.ApplyProgress(nil, enrollment, 100)
	assert.NoError(t, err)
	assert.Equal(t, firstCompletedAt, enrollment.CompletedAt)
}

// TestApplyProgressRefundStateNotCompleted 测试退款流程中的选课不会被置为完成
// 满进度只会把 IN_PROGRESS 推进到 COMPLETED，其他状态保持不变
func TestApplyProgressRefundStateNotCompleted(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusRefundRequested}
	mockEnrollRepo.On("UpdateEnrollmentProgress", mock.Anything, enrollment).Return(nil)

	err := service.ApplyProgress(nil, enrollment, 100)
	assert.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusRefundRequested, enrollment.Status)
	assert.Nil(t, enrollment.CompletedAt)
}

// TestApplyProgressOutOfRange 测试越界进度为硬错误
func TestApplyProgressOutOfRange(t *testing.T) {
	mockEnrollRepo := new(MockEnrollmentRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7}

	err := service.ApplyProgress(nil, enrollment, -1)
	assert.Equal(t, serviceErrors.ErrInvalidInput, serviceErrors.GetErrorCode(err))

	err = service.ApplyProgress(nil, enrollment, 100.01)
	assert.Equal(t, serviceErrors.ErrInvalidInput, serviceErrors.GetErrorCode(err))

	mockEnrollRepo.AssertNotCalled(t, "UpdateEnrollmentProgress", mock.Anything, mock.Anything)
}

// TestListEnrollments 测试选课列表的用户视角
func TestListEnrollments(t *testing.T) {
	t.Run("学生看到自己的选课", func(t *testing.T) {
		mockEnrollRepo := new(MockEnrollmentRepository)
		mockUserRepo := new(MockUserRepository)
		service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

		student := &model.User{ID: 2, UserType: model.UserTypeStudent}
		own := []*model.Enrollment{{ID: 1, StudentID: 2, CourseID: 7}}
		mockUserRepo.On("FindByID", 2).Return(student, nil)
		mockEnrollRepo.On("ListEnrollmentsByStudent", 2).Return(own, nil)

		enrollments, err := service.ListEnrollments(2)
		assert.NoError(t, err)
		assert.Len(t, enrollments, 1)
		mockUserRepo.AssertNotCalled(t, "ListChildren", mock.Anything)
	})

	t.Run("家长看到所有子账号的选课汇总", func(t *testing.T) {
		mockEnrollRepo := new(MockEnrollmentRepository)
		mockUserRepo := new(MockUserRepository)
		service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

		parent := &model.User{ID: 1, UserType: model.UserTypeParent}
		children := []*model.User{
			{ID: 2, UserType: model.UserTypeStudent},
			{ID: 3, UserType: model.UserTypeStudent},
		}
		mockUserRepo.On("FindByID", 1).Return(parent, nil)
		mockUserRepo.On("ListChildren", 1).Return(children, nil)
		mockEnrollRepo.On("ListEnrollmentsByStudent", 2).Return([]*model.Enrollment{
			{ID: 1, StudentID: 2, CourseID: 7},
			{ID: 2, StudentID: 2, CourseID: 8},
		}, nil)
		mockEnrollRepo.On("ListEnrollmentsByStudent", 3).Return([]*model.Enrollment{
			{ID: 3, StudentID: 3, CourseID: 7},
		}, nil)

		enrollments, err := service.ListEnrollments(1)
		assert.NoError(t, err)
		assert.Len(t, enrollments, 3)
	})

	t.Run("用户不存在", func(t *testing.T) {
		mockEnrollRepo := new(MockEnrollmentRepository)
		mockUserRepo := new(MockUserRepository)
		service := NewEnrollmentService(mockEnrollRepo, mockUserRepo)

		mockUserRepo.On("FindByID", 99).Return(nil, nil)

		_, err := service.ListEnrollments(99)
		assert.Equal(t, serviceErrors.ErrNotFound, serviceErrors.GetErrorCode(err))
	})
}
