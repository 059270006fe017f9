package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type EnrollmentRepository struct {
	db *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db}
}

const enrollmentColumns = `id, student_id, course_id, status, progress_rate, completed_at, created_at, updated_at`

func (r *EnrollmentRepository) GetEnrollment(studentID, courseID int) (*model.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID))
}

func (r *EnrollmentRepository) GetEnrollmentTx(tx *sql.Tx, studentID, courseID int) (*model.Enrollment, error) {
	return scanEnrollment(tx.QueryRow(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID))
}

func scanEnrollment(row *sql.Row) (*model.Enrollment, error) {
	var e model.Enrollment
	var completedAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.Status, &e.ProgressRate,
		&completedAt, &e.CreatedAt, &e.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询选课记录失败", zap.Error(err))
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}

func (r *EnrollmentRepository) CreateEnrollment(tx *sql.Tx, enrollment *model.Enrollment) error {
	now := time.Now()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	result, err := tx.Exec(
		`INSERT INTO enrollments (student_id, course_id, status, progress_rate, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		enrollment.StudentID, enrollment.CourseID, enrollment.Status,
		enrollment.ProgressRate, enrollment.CreatedAt, enrollment.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建选课记录失败",
			zap.Error(err),
			zap.Int("student_id", enrollment.StudentID),
			zap.Int("course_id", enrollment.CourseID))
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get enrollment ID: %w", err)
	}
	enrollment.ID = int(id)

	util.Logger.Info("选课记录创建成功",
		zap.Int("enrollment_id", enrollment.ID),
		zap.Int("student_id", enrollment.StudentID),
		zap.Int("course_id", enrollment.CourseID))
	return nil
}

func (r *EnrollmentRepository) UpdateEnrollmentProgress(tx *sql.Tx, enrollment *model.Enrollment) error {
	_, err := tx.Exec(
		`UPDATE enrollments
		 SET progress_rate = ?, status = ?, completed_at = ?, updated_at = NOW()
		 WHERE id = ?`,
		enrollment.ProgressRate, enrollment.Status, enrollment.CompletedAt, enrollment.ID)
	if err != nil {
		util.Logger.Error("更新选课进度失败",
			zap.Error(err),
			zap.Int("enrollment_id", enrollment.ID))
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) UpdateEnrollmentStatus(tx *sql.Tx, enrollmentID int, status string) error {
	_, err := tx.Exec(
		`UPDATE enrollments SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, enrollmentID)
	if err != nil {
		util.Logger.Error("更新选课状态失败",
			zap.Error(err),
			zap.Int("enrollment_id", enrollmentID),
			zap.String("status", status))
		return fmt.Errorf("failed to update enrollment status: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) ListEnrollmentsByStudent(studentID int) ([]*model.Enrollment, error) {
	rows, err := r.db.Query(
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? ORDER BY created_at DESC`,
		studentID)
	if err != nil {
		util.Logger.Error("查询选课列表失败", zap.Error(err), zap.Int("student_id", studentID))
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		var completedAt sql.NullTime
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.Status, &e.ProgressRate,
			&completedAt, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.Time
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) GetLectureProgress(studentID, lectureID int) (*model.LectureProgress, error) {
	var p model.LectureProgress
	err := r.db.QueryRow(
		`SELECT id, student_id, lecture_id, viewed_seconds, completed, updated_at
		 FROM lecture_progress
		 WHERE student_id = ? AND lecture_id = ?`,
		studentID, lectureID).Scan(
		&p.ID, &p.StudentID, &p.LectureID, &p.ViewedSeconds, &p.Completed, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询讲座进度失败", zap.Error(err))
		return nil, fmt.Errorf("failed to get lecture progress: %w", err)
	}
	return &p, nil
}

// UpsertLectureProgress 写入观看进度
// completed 只增不减：一旦为 true 不会被后续更新清除
func (r *EnrollmentRepository) UpsertLectureProgress(tx *sql.Tx, progress *model.LectureProgress) error {
	_, err := tx.Exec(
		`INSERT INTO lecture_progress (student_id, lecture_id, viewed_seconds, completed, updated_at)
		 VALUES (?, ?, ?, ?, NOW())
		 ON DUPLICATE KEY UPDATE
			 viewed_seconds = VALUES(viewed_seconds),
			 completed = completed OR VALUES(completed),
			 updated_at = NOW()`,
		progress.StudentID, progress.LectureID, progress.ViewedSeconds, progress.Completed)
	if err != nil {
		util.Logger.Error("写入讲座进度失败",
			zap.Error(err),
			zap.Int("student_id", progress.StudentID),
			zap.Int("lecture_id", progress.LectureID))
		return fmt.Errorf("failed to upsert lecture progress: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) CountCompletedLectures(tx *sql.Tx, studentID, courseID int) (int, error) {
	var count int
	err := tx.QueryRow(
		`SELECT COUNT(*)
		 FROM lecture_progress p
		 JOIN lectures l ON p.lecture_id = l.id
		 WHERE p.student_id = ? AND l.course_id = ? AND p.completed = true`,
		studentID, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lectures: %w", err)
	}
	return count, nil
}

func (r *EnrollmentRepository) ListLectureProgressByCourse(studentID, courseID int) ([]*model.LectureProgress, error) {
	rows, err := r.db.Query(
		`SELECT p.id, p.student_id, p.lecture_id, p.viewed_seconds, p.completed, p.updated_at
		 FROM lecture_progress p
		 JOIN lectures l ON p.lecture_id = l.id
		 WHERE p.student_id = ? AND l.course_id = ?
		 ORDER BY l.id ASC`,
		studentID, courseID)
	if err != nil {
		util.Logger.Error("查询课程进度明细失败", zap.Error(err))
		return nil, fmt.Errorf("failed to list lecture progress: %w", err)
	}
	defer rows.Close()

	var list []*model.LectureProgress
	for rows.Next() {
		var p model.LectureProgress
		err := rows.Scan(&p.ID, &p.StudentID, &p.LectureID, &p.ViewedSeconds, &p.Completed, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture progress: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
