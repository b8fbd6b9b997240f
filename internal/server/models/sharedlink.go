package models

import "time"

// SharedLink is a capability record granting scoped, time-boxed access to a
// single item without authentication. Token is globally unique and immutable
// once issued. PasswordHash is set if and only if the link is
// password-protected. AccessCount only increases, via an atomic increment at
// the storage layer.
type SharedLink struct {
	ID           string
	OwnerID      string
	ItemID       string
	Token        string
	PasswordHash *string
	ExpiresAt    time.Time
	Revoked      bool
	AccessCount  int64
	CreatedAt    time.Time
}

// HasPassword reports whether the link is password-protected. Exposed to
// owners instead of the hash itself.
func (l *SharedLink) HasPassword() bool {
	return l.PasswordHash != nil
}

// IsExpired reports whether the link is past its expiry at the given time.
func (l *SharedLink) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
