// Package httpapi exposes the account service over HTTP: registration,
// login, logout, token refresh, and profile/media endpoints, with the auth
// guard protecting everything past login.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/viewtube/internal/logging"
	"github.com/dmitrijs2005/viewtube/internal/server/auth"
	"github.com/dmitrijs2005/viewtube/internal/server/config"
	"github.com/dmitrijs2005/viewtube/internal/server/services"
)

type Server struct {
	addr       string
	corsOrigin string
	sessions   *services.SessionService
	codec      *auth.TokenCodec
	logger     logging.Logger
}

func NewServer(cfg *config.Config, l logging.Logger, sessions *services.SessionService, codec *auth.TokenCodec) *Server {
	return &Server{
		addr:       cfg.EndpointAddr,
		corsOrigin: cfg.CORSAllowedOrigin,
		sessions:   sessions,
		codec:      codec,
		logger:     l.With("module", "http_server"),
	}
}

// Handler builds the route table. Paths mirror the public API:
// everything lives under /api/v1/users.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/users/refresh-token", s.handleRefresh)

	mux.HandleFunc("POST /api/v1/users/logout", s.RequireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/v1/users/me", s.RequireAuth(s.handleMe))
	mux.HandleFunc("POST /api/v1/users/change-password", s.RequireAuth(s.handleChangePassword))
	mux.HandleFunc("PATCH /api/v1/users/update-details", s.RequireAuth(s.handleUpdateDetails))
	mux.HandleFunc("POST /api/v1/users/update-avatar", s.RequireAuth(s.handleUpdateAvatar))
	mux.HandleFunc("POST /api/v1/users/update-cover-image", s.RequireAuth(s.handleUpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/channel/{username}", s.RequireAuth(s.handleChannel))
	mux.HandleFunc("GET /api/v1/users/watch-history", s.RequireAuth(s.handleWatchHistory))

	return s.cors(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "HTTP server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
