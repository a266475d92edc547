package web

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blockedby/leetstats/internal/logger"
)

// Per-client limits used when Config leaves them unset.
const (
	DefaultRateLimitMax    = 30
	DefaultRateLimitWindow = time.Minute
)

// Config holds server configuration
type Config struct {
	Port          int
	AllowedOrigin string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	Production bool
	// Assets holds the page files; nil serves no page.
	Assets fs.FS

	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	listener   net.Listener
	limiter    *ClientLimiter
	log        *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.RateLimitMax < 1 {
		cfg.RateLimitMax = DefaultRateLimitMax
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = DefaultRateLimitWindow
	}

	srv := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		limiter: NewClientLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		log:     log.Component("http"),
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	if s.config.Assets != nil {
		static := newStaticHandler(s.config.Assets, s.config.Production)
		s.router.Get("/favicon.ico", static.favicon)
		s.router.Get("/*", static.ServeHTTP)
		s.router.Head("/*", static.ServeHTTP)
	}
}

// RegisterAPI mounts the API route table: /health directly, everything
// under /api behind the origin guard, CORS and the per-client rate limit.
func (s *Server) RegisterAPI(api http.Handler) {
	s.router.Method(http.MethodGet, "/health", api)
	s.router.Route("/api", func(r chi.Router) {
		r.Use(originGuard(s.config.AllowedOrigin))
		r.Use(corsHandler(s.config.AllowedOrigin))
		r.Use(s.limiter.Middleware)
		r.Handle("/*", api)
	})
}

// RegisterDocs mounts the API documentation routes.
func (s *Server) RegisterDocs(docs interface {
	MountDocsOn(r interface {
		Get(pattern string, handlerFn http.HandlerFunc)
	})
}) {
	docs.MountDocsOn(s.router)
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s.httpServer.Serve(listener)
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.limiter.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}
