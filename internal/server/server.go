// Package server provides the HTTP server and routing for the dividend scout.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/database"
	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/charts"
	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/modules/universe"
	"github.com/aristath/divscout/internal/utils"
	"github.com/aristath/divscout/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Port     int
	DevMode  bool
	ChartDir string // served under /static/charts when charts are stored locally

	UniverseDB      *database.DB
	DividendService *dividends.Service
	ChartService    *charts.Service
	UniverseRepo    *universe.Repository
	EventManager    *events.Manager
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    Config
	log    zerolog.Logger

	web      *WebHandlers
	system   *SystemHandlers
	dividend *dividends.Handlers
	charts   *charts.Handlers
	universe *universe.Handlers
}

// New creates a new HTTP server
func New(cfg Config) (*Server, error) {
	web, err := NewWebHandlers(cfg.DividendService, cfg.Log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		log:      cfg.Log.With().Str("component", "server").Logger(),
		web:      web,
		system:   NewSystemHandlers(cfg.UniverseDB, cfg.Log),
		dividend: dividends.NewHandlers(cfg.DividendService, cfg.Log),
		charts:   charts.NewHandlers(cfg.ChartService, cfg.DividendService, cfg.Log),
		universe: universe.NewHandlers(cfg.UniverseRepo, cfg.EventManager, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() error {
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/", s.web.HandleIndex)
	s.router.Post("/", s.web.HandleIndex)

	assets, err := fs.Sub(embedded.Files, "static")
	if err != nil {
		return fmt.Errorf("failed to load embedded assets: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))
	if s.cfg.ChartDir != "" {
		s.router.Handle("/static/charts/*", http.StripPrefix("/static/charts/", http.FileServer(http.Dir(s.cfg.ChartDir))))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.system.HandleSystemStatus)

		s.dividend.RegisterRoutes(r)
		s.charts.RegisterRoutes(r)
		s.universe.RegisterRoutes(r)
	})

	return nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteResponse(w, r, http.StatusOK, map[string]string{"status": "healthy"}, s.log)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
