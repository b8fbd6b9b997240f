package httpapi

import (
	"errors"
	"net/http"

	"github.com/dkravtsov/shelfmark/internal/common"
)

// handleResolve serves GET /s/{token}. An optional ?password= query
// parameter unlocks protected links; protected links without it get a 401
// with code password_required so the holder knows to prompt.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.resolveAndRespond(w, r, r.URL.Query().Get("password"))
}

// handleVerify serves POST /s/{token}/verify, the password-in-body variant
// of resolution for clients that do not want credentials in the URL.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.resolveAndRespond(w, r, req.Password)
}

func (s *Server) resolveAndRespond(w http.ResponseWriter, r *http.Request, password string) {
	resolved, err := s.links.Resolve(r.Context(), r.PathValue("token"), password)
	s.metrics.ObserveResolution(resolutionOutcome(err))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResolvedResponse(resolved))
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrorNotFound):
		return codeNotFound
	case errors.Is(err, common.ErrorLinkExpired):
		return codeLinkExpired
	case errors.Is(err, common.ErrorLinkRevoked):
		return codeLinkRevoked
	case errors.Is(err, common.ErrorPasswordRequired):
		return codePasswordRequired
	case errors.Is(err, common.ErrorInvalidPassword):
		return codeInvalidPassword
	default:
		return codeInternal
	}
}
