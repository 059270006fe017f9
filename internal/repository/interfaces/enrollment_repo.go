package interfaces

import (
	"database/sql"

	"synacoding-backend/internal/model"
)

type EnrollmentRepository interface {
	GetEnrollment(studentID, courseID int) (*model.Enrollment, error)
	GetEnrollmentTx(tx *sql.Tx, studentID, courseID int) (*model.Enrollment, error)
	CreateEnrollment(tx *sql.Tx, enrollment *model.Enrollment) error
	// UpdateEnrollmentProgress 持久化进度、状态与完成时间
	UpdateEnrollmentProgress(tx *sql.Tx, enrollment *model.Enrollment) error
	UpdateEnrollmentStatus(tx *sql.Tx, enrollmentID int, status string) error
	ListEnrollmentsByStudent(studentID int) ([]*model.Enrollment, error)

	GetLectureProgress(studentID, lectureID int) (*model.LectureProgress, error)
	UpsertLectureProgress(tx *sql.Tx, progress *model.LectureProgress) error
	CountCompletedLectures(tx *sql.Tx, studentID, courseID int) (int, error)
	ListLectureProgressByCourse(studentID, courseID int) ([]*model.LectureProgress, error)
}
