// Package httpapi exposes Shelfmark's JSON-over-HTTP surface: the auth
// endpoints, the owner-authenticated shared-link lifecycle, and the public
// link resolution routes.
package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dkravtsov/shelfmark/internal/server/models"
	"github.com/dkravtsov/shelfmark/internal/server/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type createLinkRequest struct {
	ItemID         string  `json:"itemId"`
	ExpiresInHours int     `json:"expiresInHours"`
	Password       *string `json:"password"`
}

// optionalString keeps the absent / null / value distinction of a PATCH
// body field. UnmarshalJSON only runs for fields present in the document,
// so Set=false means the field was omitted entirely.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type editLinkRequest struct {
	ExpiresInHours *int           `json:"expiresInHours"`
	Password       optionalString `json:"password"`
}

// itemSummary is the owner-facing item view embedded in a freshly created
// link response.
type itemSummary struct {
	Kind  models.ItemKind `json:"kind"`
	Title string          `json:"title"`
}

type linkResponse struct {
	ID          string       `json:"id"`
	ItemID      string       `json:"itemId"`
	Token       string       `json:"token"`
	URL         string       `json:"url"`
	HasPassword bool         `json:"hasPassword"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	IsExpired   bool         `json:"isExpired"`
	Revoked     bool         `json:"revoked"`
	AccessCount int64        `json:"accessCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	Item        *itemSummary `json:"item,omitempty"`
}

type linkListResponse struct {
	Links []linkResponse `json:"links"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type verifyRequest struct {
	Password string `json:"password"`
}

type resolvedItemResponse struct {
	Kind  models.ItemKind `json:"kind"`
	Title string          `json:"title"`
	URL   string          `json:"url,omitempty"`
}

type resolvedLinkResponse struct {
	Item        resolvedItemResponse `json:"item"`
	ExpiresAt   time.Time            `json:"expiresAt"`
	AccessCount int64                `json:"accessCount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toLinkResponse(l *models.SharedLink, publicURL string) linkResponse {
	return linkResponse{
		ID:          l.ID,
		ItemID:      l.ItemID,
		Token:       l.Token,
		URL:         publicURL,
		HasPassword: l.HasPassword(),
		ExpiresAt:   l.ExpiresAt,
		IsExpired:   l.IsExpired(time.Now()),
		Revoked:     l.Revoked,
		AccessCount: l.AccessCount,
		CreatedAt:   l.CreatedAt,
	}
}

func toResolvedResponse(r *services.ResolvedLink) resolvedLinkResponse {
	return resolvedLinkResponse{
		Item: resolvedItemResponse{
			Kind:  r.Item.Kind,
			Title: r.Item.Title,
			URL:   r.Item.URL,
		},
		ExpiresAt:   r.ExpiresAt,
		AccessCount: r.AccessCount,
	}
}
