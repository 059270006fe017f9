package model

import "time"

// Course 课程模型
// 课程的创建与编辑由内容管理后台负责，这里只读取
type Course struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseStats 课程维度的统计读模型（仪表盘用）
type CourseStats struct {
	CourseID        int    `json:"course_id"`
	Title           string `json:"title"`
	EnrollmentCount int    `json:"enrollment_count"`
}

// Lecture 讲座模型
// IsSample 为 true 的讲座允许任何人观看（包括未登录用户）
type Lecture struct {
	ID              int       `json:"id"`
	CourseID        int       `json:"course_id"`
	ChapterID       int       `json:"chapter_id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds"`
	IsSample        bool      `json:"is_sample"`
	CreatedAt       time.Time `json:"created_at"`
}
