package api

import (
	"encoding/json"
	"net/http"

	"github.com/dkravtsov/shelfmark/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// mapError turns an error response back into the sentinel taxonomy. The
// code field is authoritative; the status is a fallback for bodies we
// cannot parse.
func (c *Client) mapError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch body.Code {
		case "not_found":
			return common.ErrorNotFound
		case "forbidden":
			return common.ErrorForbidden
		case "link_expired":
			return common.ErrorLinkExpired
		case "link_revoked":
			return common.ErrorLinkRevoked
		case "password_required":
			return common.ErrorPasswordRequired
		case "invalid_password":
			return common.ErrorInvalidPassword
		case "validation_failed":
			return common.ErrorValidation
		case "already_exists":
			return common.ErrorAlreadyExists
		case "unauthorized":
			return common.ErrorUnauthorized
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusGone:
		return common.ErrorLinkExpired
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusBadRequest:
		return common.ErrorValidation
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		return common.ErrorInternal
	}
}
