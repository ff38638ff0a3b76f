package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/api/handlers"
	"github.com/ramonehamilton/genesys-companion/internal/api/websocket"
	"github.com/ramonehamilton/genesys-companion/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	origins    []string
	logger     *zap.Logger
	metrics    *metrics.Service

	// WebSocket hub for real-time events
	wsHub *websocket.Hub

	deckFacade   handlers.DeckFacade
	pointsFacade handlers.PointsFacade
	cardFacade   handlers.CardFacade
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
	Logger         *zap.Logger

	// Metrics enables request statistics and GET /api/v1/metrics.
	Metrics *metrics.Service
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// Facades holds the facade instances needed by the API server.
type Facades struct {
	Deck   handlers.DeckFacade
	Points handlers.PointsFacade
	Card   handlers.CardFacade
}

// NewServer creates a new API server with the given facades.
func NewServer(cfg *Config, facades *Facades) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if facades == nil {
		facades = &Facades{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:       chi.NewRouter(),
		port:         cfg.Port,
		origins:      cfg.AllowedOrigins,
		logger:       logger.Named("api"),
		metrics:      cfg.Metrics,
		deckFacade:   facades.Deck,
		pointsFacade: facades.Points,
		cardFacade:   facades.Card,
	}
	s.wsHub = websocket.NewHub(websocket.HubOptions{
		AllowedOrigins: exactOrigins(cfg.AllowedOrigins),
		Logger:         logger,
	})

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// exactOrigins returns the origins for the WebSocket origin check. Only the
// CORS layer understands wildcard patterns, so any wildcard disables the
// check.
func exactOrigins(origins []string) []string {
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return nil
		}
	}
	return origins
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Content-Type enforcement for requests with bodies
	s.router.Use(s.jsonContentTypeMiddleware)
}

// requestLogger logs each request through zap and records its latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			s.metrics.RecordRequest(time.Since(start), ww.Status())
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and serves HTTP in the background. Listen
// errors are returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}

	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", zap.Int("port", s.port))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the WebSocket hub for external integration.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewPointsObserver creates an observer that broadcasts point list reloads
// to WebSocket clients. Register its OnReload with the point list watcher.
func (s *Server) NewPointsObserver() *websocket.PointsObserver {
	return websocket.NewPointsObserver(s.wsHub)
}
