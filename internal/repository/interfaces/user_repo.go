package interfaces

import "synacoding-backend/internal/model"

type UserRepository interface {
	FindByID(id int) (*model.User, error)
	FindFirstChild(parentID int) (*model.User, error)
	ListChildren(parentID int) ([]*model.User, error)
}
