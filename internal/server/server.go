// Package server provides the HTTP server and routing for sectorflow.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	dashboardhandlers "github.com/aristath/sectorflow/internal/modules/dashboard/handlers"
)

// requestTimeout bounds request/response routes; streams are exempt
const requestTimeout = 60 * time.Second

// Config holds server configuration
type Config struct {
	Log                zerolog.Logger
	Port               int
	DevMode            bool
	CORSAllowedOrigins []string
	RefreshTimeout     time.Duration
	CacheEnabled       bool
	Dashboard          *dashboard.Service
	EventBus           *events.Bus
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers

	// baseCtx parents every request context and is cancelled on shutdown so
	// stream handlers return instead of holding Shutdown open
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Dashboard, cfg.CacheEnabled),
	}

	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// WriteTimeout stays zero: stream connections are long-lived and request
	// routes are bounded by the timeout middleware instead.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	s.server.RegisterOnShutdown(s.cancelBase)

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	origins := s.cfg.CORSAllowedOrigins
	if devMode || len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: !devMode,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	dashboardHandler := dashboardhandlers.NewHandler(s.cfg.Dashboard, s.cfg.EventBus, s.cfg.RefreshTimeout, s.log)
	dashboardHandler.SetOriginPatterns(originPatterns(s.cfg.CORSAllowedOrigins, s.cfg.DevMode))

	s.router.Route("/api", func(r chi.Router) {
		// Request/response routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			if !s.cfg.DevMode {
				r.Use(middleware.Compress(5))
			}

			dashboardHandler.RegisterRoutes(r)

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
			})
		})

		// Long-lived streams
		r.Group(func(r chi.Router) {
			dashboardHandler.RegisterStreamRoutes(r)
			if s.cfg.EventBus != nil {
				eventsStreamHandler := NewEventsStreamHandler(s.cfg.EventBus, s.cfg.Dashboard, s.log)
				r.Get("/events/stream", eventsStreamHandler.ServeHTTP)
			}
		})
	})
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
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

// originPatterns turns CORS origins into websocket host patterns
func originPatterns(origins []string, devMode bool) []string {
	if devMode {
		return []string{"*"}
	}
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
