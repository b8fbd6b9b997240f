package services

import (
	"context"
	"testing"
	"time"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/server/config"
	"github.com/dkravtsov/shelfmark/internal/server/models"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLinkService(t *testing.T, rm *fakeRepoManager) *SharedLinkService {
	t.Helper()
	return newLinkServiceWithSigner(t, rm, &fakeSigner{prefix: "https://s3.example.com/"})
}

func newLinkServiceWithSigner(t *testing.T, rm *fakeRepoManager, signer FileURLSigner) *SharedLinkService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &config.Config{
		PublicBaseURL:    "https://shelf.example.com/",
		LinkPasswordCost: bcrypt.MinCost,
	}
	return NewSharedLinkService(db, rm, cfg, signer)
}

func addItem(t *testing.T, rm *fakeRepoManager, ownerID string, kind models.ItemKind) *models.Item {
	t.Helper()
	item, err := rm.itemsRepo.Create(context.Background(), &models.Item{
		OwnerID:    ownerID,
		Kind:       kind,
		Title:      "thing",
		URL:        "https://go.dev/blog",
		StorageKey: "users/2026/1/key",
	})
	require.NoError(t, err)
	return item
}

func TestCreate_Link(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	link, err := svc.Create(ctx, "u1", item.ID, 24, nil)
	require.NoError(t, err)
	assert.Len(t, link.Token, 32) // 16 random bytes, hex-encoded
	assert.Nil(t, link.PasswordHash)
	assert.False(t, link.Revoked)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), link.ExpiresAt, time.Minute)
	assert.Equal(t, "https://shelf.example.com/s/"+link.Token, svc.PublicURL(link.Token))
}

func TestCreate_WithPassword(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	item := addItem(t, rm, "u1", models.ItemKindNote)

	pw := "secret123"
	link, err := svc.Create(context.Background(), "u1", item.ID, 1, &pw)
	require.NoError(t, err)
	require.NotNil(t, link.PasswordHash)
	assert.NotContains(t, *link.PasswordHash, "secret123")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte("secret123")))
}

func TestCreate_Validation(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	_, err := svc.Create(ctx, "u1", item.ID, 0, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	empty := ""
	_, err = svc.Create(ctx, "u1", item.ID, 1, &empty)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCreate_OwnershipChecks(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	_, err := svc.Create(ctx, "intruder", item.ID, 1, nil)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.Create(ctx, "u1", "no-such-item", 1, nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetOwnedItem(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindBookmark)

	got, err := svc.GetOwnedItem(ctx, item.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, models.ItemKindBookmark, got.Kind)

	_, err = svc.GetOwnedItem(ctx, item.ID, "intruder")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.GetOwnedItem(ctx, "no-such-item", "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_RetriesOnTokenCollision(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	item := addItem(t, rm, "u1", models.ItemKindNote)

	rm.linksRepo.createRejects = 2

	link, err := svc.Create(context.Background(), "u1", item.ID, 1, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, link.Token)
}

func TestCreate_RetriesExhausted(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	item := addItem(t, rm, "u1", models.ItemKindNote)

	rm.linksRepo.createRejects = maxTokenAttempts

	_, err := svc.Create(context.Background(), "u1", item.ID, 1, nil)
	assert.ErrorIs(t, err, common.ErrTokenRetriesExhausted)
}

func TestEdit_RestoresRevokedLink(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	link, err := svc.Create(ctx, "u1", item.ID, 1, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, link.ID, "u1"))

	hours := 2
	edited, err := svc.Edit(ctx, link.ID, "u1", EditParams{ExpiresInHours: &hours})
	require.NoError(t, err)
	assert.False(t, edited.Revoked)

	stored, err := rm.linksRepo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.False(t, stored.Revoked)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), stored.ExpiresAt, time.Minute)
}

func TestEdit_ExpiryResetsFromEditTime(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	link, err := svc.Create(ctx, "u1", item.ID, 100, nil)
	require.NoError(t, err)

	// the new deadline is now+1h, not old deadline+1h
	hours := 1
	edited, err := svc.Edit(ctx, link.ID, "u1", EditParams{ExpiresInHours: &hours})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), edited.ExpiresAt, time.Minute)
}

func TestEdit_PasswordTriState(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	pw := "secret123"
	link, err := svc.Create(ctx, "u1", item.ID, 1, &pw)
	require.NoError(t, err)

	// absent: keeps protection
	edited, err := svc.Edit(ctx, link.ID, "u1", EditParams{})
	require.NoError(t, err)
	assert.True(t, edited.HasPassword())

	// non-nil: replaces the hash
	newPw := "rotated"
	edited, err = svc.Edit(ctx, link.ID, "u1", EditParams{Password: OptionalSecret{Set: true, Value: &newPw}})
	require.NoError(t, err)
	require.True(t, edited.HasPassword())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*edited.PasswordHash), []byte("rotated")))

	// null: clears protection
	edited, err = svc.Edit(ctx, link.ID, "u1", EditParams{Password: OptionalSecret{Set: true, Value: nil}})
	require.NoError(t, err)
	assert.False(t, edited.HasPassword())
}

func TestEdit_Ownership(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	link, err := svc.Create(ctx, "u1", item.ID, 1, nil)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, link.ID, "intruder", EditParams{})
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.Edit(ctx, "no-such-id", "u1", EditParams{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRevokeAndDelete(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()
	item := addItem(t, rm, "u1", models.ItemKindNote)

	link, err := svc.Create(ctx, "u1", item.ID, 1, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Revoke(ctx, link.ID, "intruder"), common.ErrorForbidden)
	require.NoError(t, svc.Revoke(ctx, link.ID, "u1"))

	stored, err := rm.linksRepo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)

	assert.ErrorIs(t, svc.PermanentlyDelete(ctx, link.ID, "intruder"), common.ErrorForbidden)
	require.NoError(t, svc.PermanentlyDelete(ctx, link.ID, "u1"))

	_, err = rm.linksRepo.GetByID(ctx, link.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, svc.PermanentlyDelete(ctx, link.ID, "u1"), common.ErrorNotFound)
}

func TestList_OwnerScoped(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newLinkService(t, rm)
	ctx := context.Background()

	mine := addItem(t, rm, "u1", models.ItemKindNote)
	theirs := addItem(t, rm, "u2", models.ItemKindNote)

	_, err := svc.Create(ctx, "u1", mine.ID, 1, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", theirs.ID, 1, nil)
	require.NoError(t, err)

	links, total, err := svc.List(ctx, "u1", sharedlinks.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, links, 1)
	assert.Equal(t, "u1", links[0].OwnerID)
}
