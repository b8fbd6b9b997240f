// Package session coordinates bearer token renewal on the client: a
// single-flight refresh coordinator and the http.RoundTripper that attaches
// tokens and replays requests after a renewal.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dkravtsov/shelfmark/internal/client/creds"
	"github.com/dkravtsov/shelfmark/internal/common"
)

// TokenRefresher exchanges a refresh token for a new credential pair. The
// API client implements it with a bare call to the refresh endpoint.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (creds.Pair, error)
}

type result struct {
	token string
	err   error
}

// Coordinator serializes token renewal. However many requests hit a 401
// concurrently, at most one refresh call goes to the server; everyone else
// blocks on a waiter channel until that renewal settles. The coordinator is
// the only writer to the credential store after login.
type Coordinator struct {
	store          creds.Store
	refresher      TokenRefresher
	onSessionEnded func()

	mu         sync.Mutex
	refreshing bool
	waiters    []chan result
}

// NewCoordinator constructs a Coordinator. onSessionEnded may be nil; when
// set it fires exactly once per failed renewal, after the store is cleared.
func NewCoordinator(store creds.Store, refresher TokenRefresher, onSessionEnded func()) *Coordinator {
	return &Coordinator{
		store:          store,
		refresher:      refresher,
		onSessionEnded: onSessionEnded,
	}
}

// Token returns the current access token, or empty if none is stored.
func (c *Coordinator) Token() (string, error) {
	pair, err := c.store.Pair()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	return pair.AccessToken, nil
}

// Renew obtains a fresh access token after failedToken was rejected.
//
// If another renewal already replaced failedToken, the stored token is
// returned without network I/O. If a renewal is in flight, the caller blocks
// until it settles and shares its outcome. Otherwise the caller becomes the
// leader, performs the refresh call, updates the store, and only then wakes
// the waiters. A missing refresh token or a failed refresh ends the session:
// the store is cleared and every caller gets common.ErrSessionEnded.
func (c *Coordinator) Renew(ctx context.Context, failedToken string) (string, error) {
	c.mu.Lock()

	pair, err := c.store.Pair()
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		c.mu.Unlock()
		return "", err
	}

	if pair.AccessToken != "" && pair.AccessToken != failedToken {
		// someone already renewed
		c.mu.Unlock()
		return pair.AccessToken, nil
	}

	if c.refreshing {
		ch := make(chan result, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case r := <-ch:
			return r.token, r.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c.refreshing = true
	refreshToken := pair.RefreshToken
	c.mu.Unlock()

	if refreshToken == "" {
		return c.endSession()
	}

	newPair, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return c.endSession()
	}

	if err := c.store.Save(newPair); err != nil {
		c.settle("", err)
		return "", err
	}

	c.settle(newPair.AccessToken, nil)
	return newPair.AccessToken, nil
}

// endSession clears the store, fires the callback, and fails the waiters.
func (c *Coordinator) endSession() (string, error) {
	_ = c.store.Clear()
	if c.onSessionEnded != nil {
		c.onSessionEnded()
	}
	c.settle("", common.ErrSessionEnded)
	return "", common.ErrSessionEnded
}

// settle publishes the renewal outcome. The store is already updated by the
// time waiters wake, so none of them observes a stale token.
func (c *Coordinator) settle(token string, err error) {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- result{token: token, err: err}
	}
}
