package users

import (
	"context"

	"github.com/dmitrijs2005/shiftbook/internal/server/models"
)

// Repository describes user account storage.
type Repository interface {
	// Create inserts a new user and returns it with the assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByLogin returns the user with the given username, or
	// common.ErrorNotFound.
	GetByLogin(ctx context.Context, username string) (*models.User, error)
}
