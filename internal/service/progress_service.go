package service

import (
	"database/sql"
	"math"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

// AnonymousViewer 表示未登录观看者，样例讲座对其开放但不落进度
const AnonymousViewer = 0

type ProgressService struct {
	enrollmentRepo interfaces.EnrollmentRepository
	courseRepo     interfaces.CourseRepository
	txRunner       interfaces.TxRunner
	applier        ProgressApplier
	completeRate   float64
}

func NewProgressService(
	enrollmentRepo interfaces.EnrollmentRepository,
	courseRepo interfaces.CourseRepository,
	txRunner interfaces.TxRunner,
	applier ProgressApplier,
	completeRate float64,
) *ProgressService {
	return &ProgressService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		txRunner:       txRunner,
		applier:        applier,
		completeRate:   completeRate,
	}
}

// RecordLectureView 记录讲座观看进度并重算课程进度
// 样例讲座任何人可看（匿名观看不落进度）；非样例讲座要求有效选课
// 越界的观看位置视为客户端过期上报，静默忽略不报错
func (s *ProgressService) RecordLectureView(studentID, lectureID, viewedSeconds int) error {
	lecture, err := s.courseRepo.GetLectureByID(lectureID)
	if err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load lecture", err)
	}
	if lecture == nil {
		return serviceErrors.New(serviceErrors.ErrNotFound, "lecture not found")
	}

	if studentID == AnonymousViewer {
		if !lecture.IsSample {
			return serviceErrors.New(serviceErrors.ErrForbidden, "lecture requires an active enrollment")
		}
		// 匿名观看样例讲座：放行但不持久化
		return nil
	}

	enrollment, err := s.enrollmentRepo.GetEnrollment(studentID, lecture.CourseID)
	if err != nil {
		return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load enrollment", err)
	}
	// 退款流程中的选课不再算有效：非样例讲座拒绝观看
	active := enrollment != nil && enrollment.IsActive()
	if !lecture.IsSample && !active {
		return serviceErrors.New(serviceErrors.ErrForbidden, "lecture requires an active enrollment")
	}

	if viewedSeconds < 0 || viewedSeconds > lecture.DurationSeconds {
		util.Logger.Debug("忽略越界的观看进度上报",
			zap.Int("student_id", studentID),
			zap.Int("lecture_id", lectureID),
			zap.Int("viewed_seconds", viewedSeconds),
			zap.Int("duration_seconds", lecture.DurationSeconds))
		return nil
	}

	completed := lecture.DurationSeconds > 0 &&
		float64(viewedSeconds)/float64(lecture.DurationSeconds) >= s.completeRate

	return s.txRunner.RunInTx(func(tx *sql.Tx) error {
		progress := &model.LectureProgress{
			StudentID:     studentID,
			LectureID:     lectureID,
			ViewedSeconds: viewedSeconds,
			Completed:     completed,
		}
		if err := s.enrollmentRepo.UpsertLectureProgress(tx, progress); err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to upsert lecture progress", err)
		}

		// 有有效选课才聚合课程进度（样例讲座观看者可能没有选课或选课已冻结）
		if !active {
			return nil
		}

		total, err := s.courseRepo.CountLecturesByCourse(lecture.CourseID)
		if err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to count lectures", err)
		}
		if total == 0 {
			// 没有讲座时进度保持不变
			return nil
		}

		completedCount, err := s.enrollmentRepo.CountCompletedLectures(tx, studentID, lecture.CourseID)
		if err != nil {
			return serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to count completed lectures", err)
		}

		rate := math.Round(100*float64(completedCount)/float64(total)*100) / 100
		return s.applier.ApplyProgress(tx, enrollment, rate)
	})
}

// GetCourseProgress 获取学生在某课程下的选课、课程大纲与逐讲进度
// 大纲与进度分开返回：未观看过的讲座没有进度记录
func (s *ProgressService) GetCourseProgress(studentID, courseID int) (*model.Enrollment, []*model.Lecture, []*model.LectureProgress, error) {
	enrollment, err := s.enrollmentRepo.GetEnrollment(studentID, courseID)
	if err != nil {
		return nil, nil, nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load enrollment", err)
	}
	if enrollment == nil {
		return nil, nil, nil, serviceErrors.New(serviceErrors.ErrNotFound, "enrollment not found")
	}

	lectures, err := s.courseRepo.ListLecturesByCourse(courseID)
	if err != nil {
		return nil, nil, nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list lectures", err)
	}

	progress, err := s.enrollmentRepo.ListLectureProgressByCourse(studentID, courseID)
	if err != nil {
		return nil, nil, nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list lecture progress", err)
	}
	return enrollment, lectures, progress, nil
}

// GetLectureProgress 获取单讲观看进度，客户端用于续播定位
func (s *ProgressService) GetLectureProgress(studentID, lectureID int) (*model.LectureProgress, error) {
	progress, err := s.enrollmentRepo.GetLectureProgress(studentID, lectureID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to load lecture progress", err)
	}
	if progress == nil {
		return nil, serviceErrors.New(serviceErrors.ErrNotFound, "lecture progress not found")
	}
	return progress, nil
}
