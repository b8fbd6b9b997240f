package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/dbx"
	"github.com/dkravtsov/shelfmark/internal/server/models"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/items"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/refreshtokens"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- in-memory fakes shared by service tests ---

type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // by username
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	f.users[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{
		ID:      uuid.NewString(),
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type fakeItemsRepo struct {
	mu    sync.Mutex
	items map[string]*models.Item
}

func newFakeItemsRepo() *fakeItemsRepo {
	return &fakeItemsRepo{items: map[string]*models.Item{}}
}

func (f *fakeItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	f.items[item.ID] = item
	return item, nil
}

// remove deletes an item out from under its links, for tests that need a
// dangling link.
func (f *fakeItemsRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}

func (f *fakeItemsRepo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return item, nil
}

type fakeLinksRepo struct {
	mu    sync.Mutex
	links map[string]*models.SharedLink // by id

	// createRejects makes the next N Create calls fail with
	// common.ErrorAlreadyExists, simulating token collisions.
	createRejects int
}

func newFakeLinksRepo() *fakeLinksRepo {
	return &fakeLinksRepo{links: map[string]*models.SharedLink{}}
}

func (f *fakeLinksRepo) Create(ctx context.Context, link *models.SharedLink) (*models.SharedLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createRejects > 0 {
		f.createRejects--
		return nil, common.ErrorAlreadyExists
	}
	for _, l := range f.links {
		if l.Token == link.Token {
			return nil, common.ErrorAlreadyExists
		}
	}
	link.ID = uuid.NewString()
	link.CreatedAt = time.Now()
	cp := *link
	f.links[link.ID] = &cp
	return link, nil
}

func (f *fakeLinksRepo) GetByID(ctx context.Context, id string) (*models.SharedLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLinksRepo) GetByToken(ctx context.Context, token string) (*models.SharedLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeLinksRepo) ListByOwner(ctx context.Context, ownerID string, filter sharedlinks.ListFilter) ([]*models.SharedLink, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SharedLink
	for _, l := range f.links {
		if l.OwnerID != ownerID {
			continue
		}
		if filter.ItemID != nil && l.ItemID != *filter.ItemID {
			continue
		}
		if filter.Revoked != nil && l.Revoked != *filter.Revoked {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLinksRepo) Update(ctx context.Context, link *models.SharedLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.links[link.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.ExpiresAt = link.ExpiresAt
	stored.PasswordHash = link.PasswordHash
	stored.Revoked = link.Revoked
	return nil
}

func (f *fakeLinksRepo) SetRevoked(ctx context.Context, id string, revoked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return common.ErrorNotFound
	}
	l.Revoked = revoked
	return nil
}

func (f *fakeLinksRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeLinksRepo) IncrementAccessCount(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	l.AccessCount++
	return l.AccessCount, nil
}

type fakeRepoManager struct {
	usersRepo   *fakeUsersRepo
	refreshRepo *fakeRefreshRepo
	itemsRepo   *fakeItemsRepo
	linksRepo   *fakeLinksRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		usersRepo:   newFakeUsersRepo(),
		refreshRepo: newFakeRefreshRepo(),
		itemsRepo:   newFakeItemsRepo(),
		linksRepo:   newFakeLinksRepo(),
	}
}

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return f.usersRepo }
func (f *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return f.refreshRepo
}
func (f *fakeRepoManager) Items(db dbx.DBTX) items.Repository             { return f.itemsRepo }
func (f *fakeRepoManager) SharedLinks(db dbx.DBTX) sharedlinks.Repository { return f.linksRepo }
func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

type fakeSigner struct {
	prefix string
	err    error
}

func (f *fakeSigner) PresignGet(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + key, nil
}
