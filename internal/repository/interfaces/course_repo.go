package interfaces

import "synacoding-backend/internal/model"

type CourseRepository interface {
	GetCourseByID(id int) (*model.Course, error)
	GetLectureByID(id int) (*model.Lecture, error)
	ListLecturesByCourse(courseID int) ([]*model.Lecture, error)
	CountLecturesByCourse(courseID int) (int, error)
}
