// Package api is the typed Shelfmark client. Owner calls go through the
// auth transport, so expired access tokens are renewed and replayed
// transparently; the bootstrap calls go out bare.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dkravtsov/shelfmark/internal/client/creds"
	"github.com/dkravtsov/shelfmark/internal/client/session"
)

const requestTimeout = 15 * time.Second

// ItemSummary is the item view the server embeds in a create response.
type ItemSummary struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// SharedLink is the owner-side view of a link as the server returns it.
type SharedLink struct {
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
	Item        *ItemSummary `json:"item,omitempty"`
}

// CreateLinkParams are the inputs to CreateSharedLink. A nil Password
// issues an open link.
type CreateLinkParams struct {
	ItemID         string  `json:"itemId"`
	ExpiresInHours int     `json:"expiresInHours"`
	Password       *string `json:"password,omitempty"`
}

// EditLinkParams are the inputs to EditSharedLink. SetPassword=false leaves
// the password untouched; SetPassword=true with a nil Password removes it.
type EditLinkParams struct {
	ExpiresInHours *int
	SetPassword    bool
	Password       *string
}

// ListLinksParams filter and paginate ListSharedLinks. Zero values mean
// server defaults.
type ListLinksParams struct {
	ItemID  string
	Revoked *bool
	Page    int
	Limit   int
}

// LinkPage is one page of links plus the total matching count.
type LinkPage struct {
	Links []SharedLink `json:"links"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// Client talks to the Shelfmark server.
type Client struct {
	baseURL string
	store   creds.Store
	// authed carries the coordinator transport; raw is for bootstrap calls
	authed *http.Client
	raw    *http.Client
}

// New constructs a Client. onSessionEnded, when non-nil, fires once per
// failed renewal so the caller can prompt for a fresh login.
func New(baseURL string, store creds.Store, onSessionEnded func()) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		raw:     &http.Client{Timeout: requestTimeout},
	}

	coordinator := session.NewCoordinator(store, c, onSessionEnded)
	c.authed = &http.Client{
		Transport: session.NewAuthTransport(nil, coordinator),
		Timeout:   requestTimeout,
	}

	return c
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, c.raw, http.MethodPost, "/auth/register", body, nil)
}

// Login exchanges credentials for a token pair and saves it to the store.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var pair creds.Pair
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/login", body, &pair); err != nil {
		return err
	}
	return c.store.Save(pair)
}

// Logout drops the local credentials. The server keeps its refresh token
// row until it expires.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Refresh exchanges a refresh token for a new pair. It bypasses the
// coordinator; the coordinator itself is the caller.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (creds.Pair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var pair creds.Pair
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/refresh", body, &pair); err != nil {
		return creds.Pair{}, err
	}
	return pair, nil
}

// CreateSharedLink issues a new capability link for an owned item.
func (c *Client) CreateSharedLink(ctx context.Context, params CreateLinkParams) (*SharedLink, error) {
	var link SharedLink
	if err := c.do(ctx, c.authed, http.MethodPost, "/shared-links", params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListSharedLinks returns one page of the caller's links.
func (c *Client) ListSharedLinks(ctx context.Context, params ListLinksParams) (*LinkPage, error) {
	q := url.Values{}
	if params.ItemID != "" {
		q.Set("itemId", params.ItemID)
	}
	if params.Revoked != nil {
		q.Set("revoked", strconv.FormatBool(*params.Revoked))
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	path := "/shared-links"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page LinkPage
	if err := c.do(ctx, c.authed, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// EditSharedLink updates expiry and/or password. Any successful edit also
// restores a revoked link.
func (c *Client) EditSharedLink(ctx context.Context, id string, params EditLinkParams) (*SharedLink, error) {
	// build the body by hand to keep absent and null distinct
	body := map[string]any{}
	if params.ExpiresInHours != nil {
		body["expiresInHours"] = *params.ExpiresInHours
	}
	if params.SetPassword {
		if params.Password != nil {
			body["password"] = *params.Password
		} else {
			body["password"] = nil
		}
	}

	var link SharedLink
	if err := c.do(ctx, c.authed, http.MethodPatch, "/shared-links/"+id, body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// RevokeSharedLink soft-disables a link.
func (c *Client) RevokeSharedLink(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/shared-links/"+id, nil, nil)
}

// DeleteSharedLink permanently removes a link.
func (c *Client) DeleteSharedLink(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/shared-links/"+id+"/permanent", nil, nil)
}

func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}
