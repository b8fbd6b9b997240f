// Package users provides the repository for user accounts.
package users

import (
	"context"

	"github.com/dkravtsov/shelfmark/internal/server/models"
)

// Repository defines storage operations for user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
