// Package sharedlinks provides the repository for shared-link capability
// records.
package sharedlinks

import (
	"context"

	"github.com/dkravtsov/shelfmark/internal/server/models"
)

// ListFilter narrows and pages owner-scoped listings. Nil pointer fields
// mean "no filter". Page is 1-based.
type ListFilter struct {
	ItemID  *string
	Revoked *bool
	Page    int
	Limit   int
}

// Repository defines storage operations for shared links.
//
// Token uniqueness is enforced by a unique constraint at the storage layer;
// Create surfaces a collision as common.ErrorAlreadyExists so the issuer can
// regenerate. IncrementAccessCount must be a single atomic increment, never
// read-modify-write, so concurrent resolutions never under-count.
type Repository interface {
	Create(ctx context.Context, link *models.SharedLink) (*models.SharedLink, error)
	GetByID(ctx context.Context, id string) (*models.SharedLink, error)
	GetByToken(ctx context.Context, token string) (*models.SharedLink, error)
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*models.SharedLink, int64, error)
	Update(ctx context.Context, link *models.SharedLink) error
	SetRevoked(ctx context.Context, id string, revoked bool) error
	Delete(ctx context.Context, id string) error
	IncrementAccessCount(ctx context.Context, id string) (int64, error)
}
