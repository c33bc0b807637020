package transporthttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/config"
)

// Server is the HTTP server for the form intake endpoints
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes registered
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(SecurityHeaders)

	r.Get("/healthz", handlers.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/contact", handlers.Contact)
		r.Post("/construction", handlers.Construction)
		r.Post("/real-estate", handlers.RealEstate)
		r.Post("/interior-design", handlers.InteriorDesign)
	})

	return &Server{
		router: r,
		cfg:    cfg,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.ListenAddress))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
