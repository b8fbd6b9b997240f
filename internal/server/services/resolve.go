package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

// RedactedItem is the public view of an item behind a shared link. Internal
// storage references are rewritten into fetchable URLs; owner identity and
// storage keys are never exposed.
type RedactedItem struct {
	Kind  models.ItemKind
	Title string
	URL   string
}

// ResolvedLink is what a successful resolution returns to the link holder.
type ResolvedLink struct {
	Item        RedactedItem
	ExpiresAt   time.Time
	AccessCount int64
}

// Resolve validates and consumes a capability token. The checks run in strict
// precedence order, first match wins:
//
//	unknown token        -> common.ErrorNotFound
//	past expiry          -> common.ErrorLinkExpired (checked before revoked)
//	revoked              -> common.ErrorLinkRevoked
//	password not given   -> common.ErrorPasswordRequired
//	password wrong       -> common.ErrorInvalidPassword
//
// Only a successful resolution mutates state, and only the access counter,
// via the repository's atomic increment.
func (s *SharedLinkService) Resolve(ctx context.Context, token, password string) (*ResolvedLink, error) {
	repo := s.repomanager.SharedLinks(s.db)

	link, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching shared link: %w", err)
	}

	if link.IsExpired(timeNow()) {
		return nil, common.ErrorLinkExpired
	}
	if link.Revoked {
		return nil, common.ErrorLinkRevoked
	}
	if link.PasswordHash != nil {
		if password == "" {
			return nil, common.ErrorPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(password)) != nil {
			return nil, common.ErrorInvalidPassword
		}
	}

	// the increment comes last so a resolution that fails past the checks
	// (item gone, presign error) leaves the counter untouched
	item, err := s.redactItem(ctx, link.ItemID)
	if err != nil {
		return nil, err
	}

	accessCount, err := repo.IncrementAccessCount(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting access: %w", err)
	}

	return &ResolvedLink{
		Item:        *item,
		ExpiresAt:   link.ExpiresAt,
		AccessCount: accessCount,
	}, nil
}

// redactItem loads the target item and strips it down to the public view,
// presigning the storage key of file items.
func (s *SharedLinkService) redactItem(ctx context.Context, itemID string) (*RedactedItem, error) {
	itemRepo := s.repomanager.Items(s.db)
	item, err := itemRepo.GetByID(ctx, itemID)
	if err != nil {
		// the link outlived its item
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading item: %w", err)
	}

	redacted := &RedactedItem{Kind: item.Kind, Title: item.Title}
	switch item.Kind {
	case models.ItemKindFile:
		url, err := s.signer.PresignGet(ctx, item.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error presigning file url: %w", err)
		}
		redacted.URL = url
	case models.ItemKindBookmark:
		redacted.URL = item.URL
	}
	return redacted, nil
}
