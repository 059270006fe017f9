package model

import "time"

// 用户类型常量
const (
	UserTypeParent  = "PARENT"
	UserTypeStudent = "STUDENT"
	UserTypeAdmin   = "ADMIN"
)

// User 结构体表示用户模型
// 家长（付款人）与学生（学习者）通过 ParentID 关联
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // 密码哈希不应在JSON中暴露
	UserType     string     `json:"user_type"`
	ParentID     *int       `json:"parent_id,omitempty"` // 学生账号所属的家长ID
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at"`
}

// IsStudent 判断是否为学生账号
func (u *User) IsStudent() bool {
	return u.UserType == UserTypeStudent
}

// IsChildOf 判断是否为指定家长的子账号
func (u *User) IsChildOf(parentID int) bool {
	return u.ParentID != nil && *u.ParentID == parentID
}
