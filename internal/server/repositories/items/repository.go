// Package items provides the repository for the items shared links point at.
// The full CRUD surface for items lives outside this subsystem; only the
// operations needed for ownership checks and the public redacted view are
// defined here.
package items

import (
	"context"

	"github.com/dkravtsov/shelfmark/internal/server/models"
)

// Repository defines the minimal storage operations on items.
type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
}
