package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/session"
	"github.com/shopfront/shopfront/internal/pkg/config"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	api      *backend.Client
	sessions *session.Store
	router   http.Handler
}

// New creates a new Server instance with all dependencies. There is no
// database here: every piece of commerce state lives in the remote backend,
// reached through the API client.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	api := backend.NewClient(cfg.Backend, logger)
	return &Server{
		cfg:      cfg,
		logger:   logger,
		api:      api,
		sessions: session.NewStore(api, cfg.Session.CacheTTL, logger),
	}
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Backend returns the commerce backend client
func (s *Server) Backend() *backend.Client {
	return s.api
}

// Sessions returns the session store
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}
