// Package refreshtokens provides the repository for server-stored refresh
// tokens used in the authentication flow.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dkravtsov/shelfmark/internal/server/models"
)

// Repository defines storage operations for refresh tokens.
type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
