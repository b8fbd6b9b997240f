package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/server/config"
	"github.com/dkravtsov/shelfmark/internal/server/models"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/repomanager"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"golang.org/x/crypto/bcrypt"
)

// linkTokenBytes is the entropy of a capability token: 16 random bytes,
// 128 bits, hex-encoded to 32 characters.
const linkTokenBytes = 16

// maxTokenAttempts bounds the regenerate-on-collision loop. Collisions are
// near-impossible at this entropy; hitting the cap means the uniqueness
// check itself is broken and we fail loudly instead of looping forever.
const maxTokenAttempts = 5

// timeNow is a seam for tests that need to move the clock.
var timeNow = time.Now

// OptionalSecret distinguishes "field absent" from "field set to null" in
// edit requests: Set=false keeps the current password, Set=true with a nil
// Value clears it, Set=true with a non-nil Value replaces it.
type OptionalSecret struct {
	Set   bool
	Value *string
}

// EditParams carries the mutable fields of a link edit. A nil ExpiresInHours
// keeps the current expiry; a set value restarts the clock from the moment
// of the edit rather than extending the old deadline.
type EditParams struct {
	ExpiresInHours *int
	Password       OptionalSecret
}

// SharedLinkService issues shared-link capability tokens and handles the
// owner-facing lifecycle: list, edit, revoke, permanent delete.
type SharedLinkService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	baseURL      string
	passwordCost int
	signer       FileURLSigner
}

// NewSharedLinkService constructs a SharedLinkService. signer is used by
// Resolve to rewrite storage keys of file items into fetchable URLs.
func NewSharedLinkService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, signer FileURLSigner) *SharedLinkService {
	return &SharedLinkService{
		db:           db,
		repomanager:  m,
		baseURL:      strings.TrimRight(cfg.PublicBaseURL, "/"),
		passwordCost: cfg.LinkPasswordCost,
		signer:       signer,
	}
}

// PublicURL derives the shareable URL for a token.
func (s *SharedLinkService) PublicURL(token string) string {
	return s.baseURL + "/s/" + token
}

// Create issues a new shared link for the given item. The caller must own
// the item. password of nil means the link is open; otherwise it is hashed
// with bcrypt before storage. The raw password is never persisted.
func (s *SharedLinkService) Create(ctx context.Context, ownerID, itemID string, expiresInHours int, password *string) (*models.SharedLink, error) {
	if expiresInHours <= 0 {
		return nil, common.ErrorValidation
	}
	if password != nil && *password == "" {
		return nil, common.ErrorValidation
	}

	if err := s.checkItemOwnership(ctx, itemID, ownerID); err != nil {
		return nil, err
	}

	var passwordHash *string
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), s.passwordCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		h := string(hash)
		passwordHash = &h
	}

	expiresAt := timeNow().Add(time.Duration(expiresInHours) * time.Hour)
	repo := s.repomanager.SharedLinks(s.db)

	// Entropy makes collisions near-impossible; the unique constraint on
	// token is the real safety net. Regenerate on collision, bounded.
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := common.MakeRandHexString(linkTokenBytes)
		if err != nil {
			return nil, common.ErrorInternal
		}

		link, err := repo.Create(ctx, &models.SharedLink{
			OwnerID:      ownerID,
			ItemID:       itemID,
			Token:        token,
			PasswordHash: passwordHash,
			ExpiresAt:    expiresAt,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("error creating shared link: %w", err)
		}
		return link, nil
	}

	return nil, common.ErrTokenRetriesExhausted
}

// List returns one page of the owner's links plus the total matching count.
func (s *SharedLinkService) List(ctx context.Context, ownerID string, filter sharedlinks.ListFilter) ([]*models.SharedLink, int64, error) {
	repo := s.repomanager.SharedLinks(s.db)
	links, total, err := repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing shared links: %w", err)
	}
	return links, total, nil
}

// Edit updates a link's expiry and/or password protection. Any successful
// edit also clears the revoked flag, restoring a revoked link.
func (s *SharedLinkService) Edit(ctx context.Context, id, ownerID string, params EditParams) (*models.SharedLink, error) {
	link, err := s.getOwnedLink(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if params.ExpiresInHours != nil {
		if *params.ExpiresInHours <= 0 {
			return nil, common.ErrorValidation
		}
		link.ExpiresAt = timeNow().Add(time.Duration(*params.ExpiresInHours) * time.Hour)
	}

	if params.Password.Set {
		if params.Password.Value == nil {
			link.PasswordHash = nil
		} else {
			if *params.Password.Value == "" {
				return nil, common.ErrorValidation
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password.Value), s.passwordCost)
			if err != nil {
				return nil, common.ErrorInternal
			}
			h := string(hash)
			link.PasswordHash = &h
		}
	}

	link.Revoked = false

	repo := s.repomanager.SharedLinks(s.db)
	if err := repo.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("error updating shared link: %w", err)
	}
	return link, nil
}

// Revoke soft-disables a link. Reversible via Edit.
func (s *SharedLinkService) Revoke(ctx context.Context, id, ownerID string) error {
	if _, err := s.getOwnedLink(ctx, id, ownerID); err != nil {
		return err
	}
	repo := s.repomanager.SharedLinks(s.db)
	if err := repo.SetRevoked(ctx, id, true); err != nil {
		return fmt.Errorf("error revoking shared link: %w", err)
	}
	return nil
}

// PermanentlyDelete hard-deletes a link. Irreversible.
func (s *SharedLinkService) PermanentlyDelete(ctx context.Context, id, ownerID string) error {
	if _, err := s.getOwnedLink(ctx, id, ownerID); err != nil {
		return err
	}
	repo := s.repomanager.SharedLinks(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting shared link: %w", err)
	}
	return nil
}

// --- helpers below ---

// GetOwnedItem loads an item and verifies the caller owns it. The HTTP
// layer uses it to embed the item view in the create-link response.
func (s *SharedLinkService) GetOwnedItem(ctx context.Context, itemID, ownerID string) (*models.Item, error) {
	itemRepo := s.repomanager.Items(s.db)
	item, err := itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if item.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return item, nil
}

func (s *SharedLinkService) checkItemOwnership(ctx context.Context, itemID, ownerID string) error {
	_, err := s.GetOwnedItem(ctx, itemID, ownerID)
	return err
}

func (s *SharedLinkService) getOwnedLink(ctx context.Context, id, ownerID string) (*models.SharedLink, error) {
	repo := s.repomanager.SharedLinks(s.db)
	link, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if link.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return link, nil
}
