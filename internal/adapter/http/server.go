package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/opsdesk/opsdesk/internal/adapter/identity"
	"github.com/opsdesk/opsdesk/internal/adapter/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	server *http.Server
	logger *logrus.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	RateLimitAttempts int
	RateLimitWindow   time.Duration
}

// Handlers groups the route registrars the server mounts.
type Handlers struct {
	Auth     *AuthHandler
	Tickets  *TicketHandler
	Assets   *AssetHandler
	Projects *ProjectHandler
	Users    *UserHandler
	Audit    *AuditHandler
}

// NewServer creates a new HTTP server
func NewServer(
	config ServerConfig,
	handlers Handlers,
	tokens *identity.TokenService,
	limiter ratelimit.Service,
	logger *logrus.Logger,
) *Server {
	router := mux.NewRouter()

	handlers.Auth.RegisterRoutes(router)
	handlers.Tickets.RegisterRoutes(router)
	handlers.Assets.RegisterRoutes(router)
	handlers.Projects.RegisterRoutes(router)
	handlers.Users.RegisterRoutes(router)
	handlers.Audit.RegisterRoutes(router)

	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware)
	router.Use(recoveryMiddleware(logger))
	router.Use(rateLimitMiddleware(limiter, config.RateLimitAttempts, config.RateLimitWindow, logger))
	router.Use(skipPublic(authMiddleware(tokens)))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	addr := config.Host + ":" + config.Port
	return &Server{
		addr:   addr,
		logger: logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// skipPublic exempts unauthenticated endpoints from the wrapped middleware.
func skipPublic(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
