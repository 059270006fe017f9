package mysql

import (
	"database/sql"
	"fmt"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db}
}

func (r *CourseRepository) GetCourseByID(id int) (*model.Course, error) {
	query := `SELECT id, title, price, status, created_at, updated_at
			  FROM courses
			  WHERE id = ?`

	var course model.Course
	err := r.db.QueryRow(query, id).Scan(
		&course.ID, &course.Title, &course.Price, &course.Status,
		&course.CreatedAt, &course.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询课程失败", zap.Error(err), zap.Int("course_id", id))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (r *CourseRepository) GetLectureByID(id int) (*model.Lecture, error) {
	query := `SELECT id, course_id, chapter_id, title, duration_seconds, is_sample, created_at
			  FROM lectures
			  WHERE id = ?`

	var lecture model.Lecture
	err := r.db.QueryRow(query, id).Scan(
		&lecture.ID, &lecture.CourseID, &lecture.ChapterID, &lecture.Title,
		&lecture.DurationSeconds, &lecture.IsSample, &lecture.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询讲座失败", zap.Error(err), zap.Int("lecture_id", id))
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	return &lecture, nil
}

func (r *CourseRepository) ListLecturesByCourse(courseID int) ([]*model.Lecture, error) {
	query := `SELECT id, course_id, chapter_id, title, duration_seconds, is_sample, created_at
			  FROM lectures
			  WHERE course_id = ?
			  ORDER BY chapter_id ASC, id ASC`

	rows, err := r.db.Query(query, courseID)
	if err != nil {
		util.Logger.Error("查询讲座列表失败", zap.Error(err), zap.Int("course_id", courseID))
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []*model.Lecture
	for rows.Next() {
		var lecture model.Lecture
		err := rows.Scan(
			&lecture.ID, &lecture.CourseID, &lecture.ChapterID, &lecture.Title,
			&lecture.DurationSeconds, &lecture.IsSample, &lecture.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture: %w", err)
		}
		lectures = append(lectures, &lecture)
	}
	return lectures, rows.Err()
}

func (r *CourseRepository) CountLecturesByCourse(courseID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM lectures WHERE course_id = ?`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lectures: %w", err)
	}
	return count, nil
}
