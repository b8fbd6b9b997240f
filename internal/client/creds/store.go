// Package creds stores the client's bearer credentials: one access token
// slot and one refresh token slot.
package creds

// Pair holds the two client-side credentials. The access token goes on the
// Authorization header; the refresh token is only ever sent to the refresh
// endpoint.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store persists the credential pair. The auth transport reads it; the
// refresh coordinator is the only writer after login.
type Store interface {
	Pair() (Pair, error)
	Save(p Pair) error
	Clear() error
}
