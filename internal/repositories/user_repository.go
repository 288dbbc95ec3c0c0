package repositories

import "vastrahub/internal/models"

// UserRepository defines the interface for buyer-account data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByPhone(phone string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
}
