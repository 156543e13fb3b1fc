package repositories

import "userrecords/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetAll() ([]models.User, error)
	// GetByID returns (nil, nil) when no user has the given ID.
	GetByID(id string) (*models.User, error)
	Create(user *models.User) error
	// Update overwrites name, email and password of the user with user.ID and
	// reports whether a user was affected. Updating a missing ID is not an error.
	Update(user *models.User) (bool, error)
	// Delete removes the user with the given ID and reports whether a user was
	// affected. Deleting a missing ID is not an error.
	Delete(id string) (bool, error)
}
