package service

import (
	"testing"

	"synacoding-backend/internal/model"
	serviceErrors "synacoding-backend/internal/service/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type progressTestEnv struct {
	enrollRepo *MockEnrollmentRepository
	courseRepo *MockCourseRepository
	applier    *MockProgressApplier
	service    *ProgressService
}

func newProgressTestEnv() *progressTestEnv {
	env := &progressTestEnv{
		enrollRepo: new(MockEnrollmentRepository),
		courseRepo: new(MockCourseRepository),
		applier:    new(MockProgressApplier),
	}
	env.service = NewProgressService(env.enrollRepo, env.courseRepo, fakeTxRunner{}, env.applier, 0.95)
	return env
}

// TestRecordLectureViewAggregation 测试课程进度的逐讲聚合
// 3讲课程完成 1/2/3 讲分别得到 33.33 / 66.67 / 100.00
func TestRecordLectureViewAggregation(t *testing.T) {
	cases := []struct {
		name           string
		completedCount int
		expectedRate   float64
	}{
		{"完成1讲", 1, 33.33},
		{"完成2讲", 2, 66.67},
		{"完成3讲", 3, 100.00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newProgressTestEnv()

			lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
			enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress}

			env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
			env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)
			env.enrollRepo.On("UpsertLectureProgress", mock.Anything, mock.AnythingOfType("*model.LectureProgress")).Return(nil)
			env.courseRepo.On("CountLecturesByCourse", 7).Return(3, nil)
			env.enrollRepo.On("CountCompletedLectures", mock.Anything, 2, 7).Return(tc.completedCount, nil)

			var appliedRate float64
			env.applier.On("ApplyProgress", mock.Anything, enrollment, mock.AnythingOfType("float64")).
				Run(func(args mock.Arguments) {
					appliedRate = args.Get(2).(float64)
				}).Return(nil)

			err := env.service.RecordLectureView(2, 5, 96)
			assert.NoError(t, err)
			assert.InDelta(t, tc.expectedRate, appliedRate, 0.001)
			env.applier.AssertExpectations(t)
		})
	}
}

// TestRecordLectureViewCompletionThreshold 测试讲座完成判定比例
func TestRecordLectureViewCompletionThreshold(t *testing.T) {
	cases := []struct {
		name          string
		viewedSeconds int
		completed     bool
	}{
		{"观看95%判定完成", 95, true},
		{"观看94%未完成", 94, false},
		{"看完判定完成", 100, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newProgressTestEnv()

			lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
			enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress}

			env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
			env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)
			env.enrollRepo.On("UpsertLectureProgress", mock.Anything, mock.MatchedBy(func(p *model.LectureProgress) bool {
				return p.StudentID == 2 && p.LectureID == 5 &&
					p.ViewedSeconds == tc.viewedSeconds && p.Completed == tc.completed
			})).Return(nil)
			env.courseRepo.On("CountLecturesByCourse", 7).Return(3, nil)
			env.enrollRepo.On("CountCompletedLectures", mock.Anything, 2, 7).Return(0, nil)
			env.applier.On("ApplyProgress", mock.Anything, enrollment, mock.AnythingOfType("float64")).Return(nil)

			err := env.service.RecordLectureView(2, 5, tc.viewedSeconds)
			assert.NoError(t, err)
			env.enrollRepo.AssertExpectations(t)
		})
	}
}

// TestRecordLectureViewOutOfRange 测试越界上报被静默忽略
func TestRecordLectureViewOutOfRange(t *testing.T) {
	env := newProgressTestEnv()

	lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress}

	env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
	env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)

	// 超出总时长
	err := env.service.RecordLectureView(2, 5, 150)
	assert.NoError(t, err)

	// 负偏移
	err = env.service.RecordLectureView(2, 5, -1)
	assert.NoError(t, err)

	env.enrollRepo.AssertNotCalled(t, "UpsertLectureProgress", mock.Anything, mock.Anything)
}

// TestRecordLectureViewAccess 测试讲座观看的访问规则
func TestRecordLectureViewAccess(t *testing.T) {
	t.Run("匿名观看样例讲座放行不落进度", func(t *testing.T) {
		env := newProgressTestEnv()
		sample := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100, IsSample: true}
		env.courseRepo.On("GetLectureByID", 5).Return(sample, nil)

		err := env.service.RecordLectureView(AnonymousViewer, 5, 50)
		assert.NoError(t, err)
		env.enrollRepo.AssertNotCalled(t, "UpsertLectureProgress", mock.Anything, mock.Anything)
	})

	t.Run("匿名观看正式讲座被拒绝", func(t *testing.T) {
		env := newProgressTestEnv()
		lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
		env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)

		err := env.service.RecordLectureView(AnonymousViewer, 5, 50)
		assert.Equal(t, serviceErrors.ErrForbidden, serviceErrors.GetErrorCode(err))
	})

	t.Run("无选课观看正式讲座被拒绝", func(t *testing.T) {
		env := newProgressTestEnv()
		lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
		env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
		env.enrollRepo.On("GetEnrollment", 2, 7).Return(nil, nil)

		err := env.service.RecordLectureView(2, 5, 50)
		assert.Equal(t, serviceErrors.ErrForbidden, serviceErrors.GetErrorCode(err))
	})

	t.Run("登录学生看样例讲座落进度但不聚合", func(t *testing.T) {
		env := newProgressTestEnv()
		sample := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100, IsSample: true}
		env.courseRepo.On("GetLectureByID", 5).Return(sample, nil)
		env.enrollRepo.On("GetEnrollment", 2, 7).Return(nil, nil)
		env.enrollRepo.On("UpsertLectureProgress", mock.Anything, mock.AnythingOfType("*model.LectureProgress")).Return(nil)

		err := env.service.RecordLectureView(2, 5, 50)
		assert.NoError(t, err)
		env.applier.AssertNotCalled(t, "ApplyProgress", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("讲座不存在", func(t *testing.T) {
		env := newProgressTestEnv()
		env.courseRepo.On("GetLectureByID", 99).Return(nil, nil)

		err := env.service.RecordLectureView(2, 99, 50)
		assert.Equal(t, serviceErrors.ErrNotFound, serviceErrors.GetErrorCode(err))
	})
}

// TestRecordLectureViewRefundFrozen 测试退款流程中的选课无法继续学习
// 退款申请后继续观看不能把选课推进到 COMPLETED
func TestRecordLectureViewRefundFrozen(t *testing.T) {
	frozenStatuses := []string{
		model.EnrollmentStatusRefundRequested,
		model.EnrollmentStatusRefunded,
	}

	for _, status := range frozenStatuses {
		t.Run(status, func(t *testing.T) {
			env := newProgressTestEnv()

			lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
			enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: status, ProgressRate: 66.67}

			env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
			env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)

			err := env.service.RecordLectureView(2, 5, 96)
			assert.Error(t, err)
			assert.Equal(t, serviceErrors.ErrForbidden, serviceErrors.GetErrorCode(err))
			env.enrollRepo.AssertNotCalled(t, "UpsertLectureProgress", mock.Anything, mock.Anything)
			env.applier.AssertNotCalled(t, "ApplyProgress", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	// 样例讲座仍可观看，但冻结的选课不参与进度聚合
	t.Run("样例讲座只落观看记录", func(t *testing.T) {
		env := newProgressTestEnv()

		sample := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100, IsSample: true}
		enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusRefundRequested}

		env.courseRepo.On("GetLectureByID", 5).Return(sample, nil)
		env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)
		env.enrollRepo.On("UpsertLectureProgress", mock.Anything, mock.AnythingOfType("*model.LectureProgress")).Return(nil)

		err := env.service.RecordLectureView(2, 5, 96)
		assert.NoError(t, err)
		env.applier.AssertNotCalled(t, "ApplyProgress", mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestGetCourseProgress 测试课程进度查询返回大纲与逐讲进度
func TestGetCourseProgress(t *testing.T) {
	env := newProgressTestEnv()

	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress, ProgressRate: 33.33}
	lectures := []*model.Lecture{
		{ID: 5, CourseID: 7, DurationSeconds: 100},
		{ID: 6, CourseID: 7, DurationSeconds: 200},
	}
	progress := []*model.LectureProgress{
		{ID: 1, StudentID: 2, LectureID: 5, ViewedSeconds: 100, Completed: true},
	}

	env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)
	env.courseRepo.On("ListLecturesByCourse", 7).Return(lectures, nil)
	env.enrollRepo.On("ListLectureProgressByCourse", 2, 7).Return(progress, nil)

	gotEnrollment, gotLectures, gotProgress, err := env.service.GetCourseProgress(2, 7)
	assert.NoError(t, err)
	assert.Equal(t, enrollment, gotEnrollment)
	assert.Len(t, gotLectures, 2)
	assert.Len(t, gotProgress, 1)

	// 无选课时不可查询
	env.enrollRepo.On("GetEnrollment", 2, 8).Return(nil, nil)
	_, _, _, err = env.service.GetCourseProgress(2, 8)
	assert.Equal(t, serviceErrors.ErrNotFound, serviceErrors.GetErrorCode(err))
}

// TestGetLectureProgress 测试单讲续播进度查询
func TestGetLectureProgress(t *testing.T) {
	env := newProgressTestEnv()

	progress := &model.LectureProgress{ID: 1, StudentID: 2, LectureID: 5, ViewedSeconds: 42}
	env.enrollRepo.On("GetLectureProgress", 2, 5).Return(progress, nil)

	got, err := env.service.GetLectureProgress(2, 5)
	assert.NoError(t, err)
	assert.Equal(t, 42, got.ViewedSeconds)

	// 从未观看过的讲座没有进度记录
	env.enrollRepo.On("GetLectureProgress", 2, 6).Return(nil, nil)
	_, err = env.service.GetLectureProgress(2, 6)
	assert.Equal(t, serviceErrors.ErrNotFound, serviceErrors.GetErrorCode(err))
}

// TestRecordLectureViewZeroLectures 测试零讲座课程进度保持不变
func TestRecordLectureViewZeroLectures(t *testing.T) {
	env := newProgressTestEnv()

	lecture := &model.Lecture{ID: 5, CourseID: 7, DurationSeconds: 100}
	enrollment := &model.Enrollment{ID: 1, StudentID: 2, CourseID: 7, Status: model.EnrollmentStatusInProgress, ProgressRate: 50}

	env.courseRepo.On("GetLectureByID", 5).Return(lecture, nil)
	env.enrollRepo.On("GetEnrollment", 2, 7).Return(enrollment, nil)
	env.enrollRepo.On("UpsertLectureProgress", mock.Anything, mock.AnythingOfType("*model.LectureProgress")).Return(nil)
	env.courseRepo.On("CountLecturesByCourse", 7).Return(0, nil)

	err := env.service.RecordLectureView(2, 5, 50)
	assert.NoError(t, err)
	env.applier.AssertNotCalled(t, "ApplyProgress", mock.Anything, mock.Anything, mock.Anything)
}
