package httpapi

import (
	"context"
	"net/http"

	"github.com/dkravtsov/shelfmark/internal/logging"
	"github.com/dkravtsov/shelfmark/internal/server/config"
	"github.com/dkravtsov/shelfmark/internal/server/obs"
	"github.com/dkravtsov/shelfmark/internal/server/models"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"github.com/dkravtsov/shelfmark/internal/server/services"
)

// userService is the auth surface the HTTP layer depends on.
type userService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// linkService is the shared-link surface the HTTP layer depends on.
type linkService interface {
	Create(ctx context.Context, ownerID, itemID string, expiresInHours int, password *string) (*models.SharedLink, error)
	List(ctx context.Context, ownerID string, filter sharedlinks.ListFilter) ([]*models.SharedLink, int64, error)
	Edit(ctx context.Context, id, ownerID string, params services.EditParams) (*models.SharedLink, error)
	Revoke(ctx context.Context, id, ownerID string) error
	PermanentlyDelete(ctx context.Context, id, ownerID string) error
	Resolve(ctx context.Context, token, password string) (*services.ResolvedLink, error)
	GetOwnedItem(ctx context.Context, itemID, ownerID string) (*models.Item, error)
	PublicURL(token string) string
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	users     userService
	links     linkService
	jwtSecret []byte
	logger    logging.Logger
	metrics   *obs.Metrics
}

// NewServer wires the HTTP surface to the services.
func NewServer(users userService, links linkService, cfg *config.Config, logger logging.Logger, metrics *obs.Metrics) *Server {
	return &Server{
		users:     users,
		links:     links,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger,
		metrics:   metrics,
	}
}

// Handler builds the route table. Owner routes sit behind the JWT
// middleware; auth bootstrap and public resolution do not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)

	mux.HandleFunc("POST /shared-links", s.withAuth(s.handleCreateLink))
	mux.HandleFunc("GET /shared-links", s.withAuth(s.handleListLinks))
	mux.HandleFunc("PATCH /shared-links/{id}", s.withAuth(s.handleEditLink))
	mux.HandleFunc("DELETE /shared-links/{id}", s.withAuth(s.handleRevokeLink))
	mux.HandleFunc("DELETE /shared-links/{id}/permanent", s.withAuth(s.handleDeleteLink))

	mux.HandleFunc("GET /s/{token}", s.handleResolve)
	mux.HandleFunc("POST /s/{token}/verify", s.handleVerify)

	return s.withLogging(mux)
}
