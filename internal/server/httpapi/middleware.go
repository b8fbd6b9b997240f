package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/server/auth"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const userIDContextKey contextKey = "userID"

// userIDFromContext returns the authenticated user id set by withAuth.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// withAuth verifies the bearer access token and stores the user id in the
// request context. Requests without a valid token never reach the handler.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(header, common.BearerPrefix)
		userID, err := auth.GetUserIDFromToken(tokenString, s.jwtSecret)
		if err != nil {
			// any verification failure is a 401, whatever jwt reports
			writeError(w, common.ErrorInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		rec.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(rec, r)

		s.metrics.ObserveRequest(r.Method, rec.status, time.Since(start))
		s.logger.Info(r.Context(), "request",
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
