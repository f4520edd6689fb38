package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/heart-risk/internal/api"
	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/predict"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	svc        *predict.Service
	logger     *zap.Logger
}

// New creates a new Server with all routes wired
func New(cfg config.Config, svc *predict.Service, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		svc:    svc,
		logger: logger,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	s.router.Use(
		api.RequestIDMiddleware,
		api.RecoveryMiddleware(s.logger),
		api.LoggingMiddleware(s.logger),
	)

	apiHandler := api.NewHandler(s.svc, s.cfg, s.logger)
	apiHandler.RegisterRoutes(s.router)

	// Static form page (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("could not load embedded static files: %w", err)
	}
	s.router.PathPrefix("/").
		Handler(http.FileServer(http.FS(staticContent))).
		Methods(http.MethodGet, http.MethodHead)

	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the configured address without serving
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until Stop is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server listening",
		zap.String("address", "http://"+ln.Addr().String()),
		zap.Bool("model_loaded", s.svc.Ready()),
	)
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Start binds and serves in one call
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// URL returns a browsable URL for a listener, mapping wildcard hosts to
// localhost
func URL(ln net.Listener) string {
	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return "http://" + ln.Addr().String()
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
