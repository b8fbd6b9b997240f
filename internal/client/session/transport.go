package session

import (
	"net/http"

	"github.com/dkravtsov/shelfmark/internal/common"
)

// bootstrapPaths are the endpoints that establish or renew credentials.
// They never carry a bearer token and a 401 from them is a final answer.
var bootstrapPaths = map[string]bool{
	"/auth/register": true,
	"/auth/login":    true,
	"/auth/refresh":  true,
}

// AuthTransport is an http.RoundTripper that attaches the bearer token and,
// on a 401 from a non-bootstrap endpoint, renews through the coordinator
// and replays the request exactly once.
type AuthTransport struct {
	base        http.RoundTripper
	coordinator *Coordinator
}

// NewAuthTransport wraps base. A nil base means http.DefaultTransport.
func NewAuthTransport(base http.RoundTripper, coordinator *Coordinator) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{base: base, coordinator: coordinator}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if bootstrapPaths[req.URL.Path] {
		return t.base.RoundTrip(req)
	}

	token, err := t.coordinator.Token()
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(t.withToken(req, token))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// a body we cannot rewind cannot be replayed
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	resp.Body.Close()

	newToken, err := t.coordinator.Renew(req.Context(), token)
	if err != nil {
		return nil, err
	}

	replay := t.withToken(req, newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}

	// one replay only; a second 401 goes back to the caller
	return t.base.RoundTrip(replay)
}

// withToken clones the request and sets the Authorization header. The
// original request is never mutated.
func (t *AuthTransport) withToken(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	if token != "" {
		clone.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return clone
}
