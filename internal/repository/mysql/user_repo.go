package mysql

import (
	"database/sql"
	"fmt"

	"synacoding-backend/internal/model"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, user_type, parent_id, created_at, updated_at
			  FROM users
			  WHERE id = ? AND deleted_at IS NULL`

	var user model.User
	var parentID sql.NullInt64
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.UserType, &parentID, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询用户失败", zap.Error(err), zap.Int("user_id", id))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if parentID.Valid {
		pid := int(parentID.Int64)
		user.ParentID = &pid
	}
	return &user, nil
}

// FindFirstChild 获取家长名下的第一个学生账号
func (r *UserRepository) FindFirstChild(parentID int) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, user_type, parent_id, created_at, updated_at
			  FROM users
			  WHERE parent_id = ? AND user_type = ? AND deleted_at IS NULL
			  ORDER BY id ASC
			  LIMIT 1`

	var user model.User
	var pid sql.NullInt64
	err := r.db.QueryRow(query, parentID, model.UserTypeStudent).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.UserType, &pid, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		util.Logger.Error("查询子账号失败", zap.Error(err), zap.Int("parent_id", parentID))
		return nil, fmt.Errorf("failed to find child account: %w", err)
	}

	if pid.Valid {
		p := int(pid.Int64)
		user.ParentID = &p
	}
	return &user, nil
}

func (r *UserRepository) ListChildren(parentID int) ([]*model.User, error) {
	query := `SELECT id, username, email, password_hash, user_type, parent_id, created_at, updated_at
			  FROM users
			  WHERE parent_id = ? AND user_type = ? AND deleted_at IS NULL
			  ORDER BY id ASC`

	rows, err := r.db.Query(query, parentID, model.UserTypeStudent)
	if err != nil {
		util.Logger.Error("查询子账号列表失败", zap.Error(err), zap.Int("parent_id", parentID))
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		var pid sql.NullInt64
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.UserType, &pid, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if pid.Valid {
			p := int(pid.Int64)
			user.ParentID = &p
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
