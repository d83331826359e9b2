package users

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository is the credential store. Usernames are matched exactly.
type Repository interface {
	// Create inserts user and fills its ID. A taken username yields
	// common.ErrDuplicateUsername.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername returns common.ErrorNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
