package repositories

import "bookstore/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)

	// Search matches users by ID, username, display name or email.
	Search(query string) ([]models.User, error)
}
