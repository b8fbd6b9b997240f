package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkravtsov/shelfmark/internal/common"
)

// Machine-readable error codes returned alongside the HTTP status. The
// password codes share a 401 status, so clients tell them apart by code.
const (
	codeNotFound         = "not_found"
	codeForbidden        = "forbidden"
	codeLinkExpired      = "link_expired"
	codeLinkRevoked      = "link_revoked"
	codePasswordRequired = "password_required"
	codeInvalidPassword  = "invalid_password"
	codeValidation       = "validation_failed"
	codeConflict         = "already_exists"
	codeUnauthorized     = "unauthorized"
	codeInternal         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the sentinel error taxonomy onto HTTP statuses and codes.
// Unknown errors become opaque 500s; their detail stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, common.ErrorNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, common.ErrorForbidden):
		status, code = http.StatusForbidden, codeForbidden
	case errors.Is(err, common.ErrorLinkExpired):
		status, code = http.StatusGone, codeLinkExpired
	case errors.Is(err, common.ErrorLinkRevoked):
		status, code = http.StatusUnauthorized, codeLinkRevoked
	case errors.Is(err, common.ErrorPasswordRequired):
		status, code = http.StatusUnauthorized, codePasswordRequired
	case errors.Is(err, common.ErrorInvalidPassword):
		status, code = http.StatusUnauthorized, codeInvalidPassword
	case errors.Is(err, common.ErrorValidation):
		status, code = http.StatusBadRequest, codeValidation
	case errors.Is(err, common.ErrorAlreadyExists):
		status, code = http.StatusConflict, codeConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorInvalidToken):
		status, code = http.StatusUnauthorized, codeUnauthorized
	default:
		status, code = http.StatusInternalServerError, codeInternal
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = common.ErrorInternal.Error()
	}

	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}
