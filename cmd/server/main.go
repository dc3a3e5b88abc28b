package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpadapter "github.com/opsdesk/opsdesk/internal/adapter/http"
	"github.com/opsdesk/opsdesk/internal/adapter/identity"
	"github.com/opsdesk/opsdesk/internal/adapter/persistence"
	"github.com/opsdesk/opsdesk/internal/adapter/ratelimit"
	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/config"
	"github.com/opsdesk/opsdesk/internal/event"
	"github.com/opsdesk/opsdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "opsdesk",
	})
	appLogger.WithField("env", cfg.Environment).Info("Application starting")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ping database")
	}
	appLogger.Info("Database connection established")

	// Repositories
	ticketRepo := persistence.NewPostgresTicketRepository(db)
	assetRepo := persistence.NewPostgresAssetRepository(db)
	projectRepo := persistence.NewPostgresProjectRepository(db)
	userRepo := persistence.NewPostgresUserRepository(db)
	auditRepo := persistence.NewPostgresAuditRepository(db)
	txManager := persistence.NewTxManager(db)

	// Event pipeline: every domain event kind feeds the audit trail.
	dispatcher := event.NewDispatcher(appLogger)
	auditSink := event.NewAuditHandler(auditRepo)
	for _, kind := range []event.Kind{
		event.KindTicketCreated, event.KindTicketUpdated, event.KindTicketDeleted,
		event.KindTicketAssigned, event.KindTicketUnassigned,
		event.KindTicketResolved, event.KindTicketClosed,
		event.KindAssetCreated, event.KindAssetUpdated, event.KindAssetDeleted,
		event.KindAssetAssigned, event.KindAssetUnassigned,
		event.KindProjectCreated, event.KindProjectUpdated, event.KindProjectDeleted,
		event.KindProjectMemberAdded, event.KindProjectMemberRemoved,
		event.KindUserCreated, event.KindUserUpdated, event.KindUserRoleChanged,
		event.KindUserDeactivated, event.KindUserDeleted,
	} {
		dispatcher.Register(kind, auditSink)
	}

	runner := command.NewRunner(txManager, dispatcher, appLogger)

	// Services
	tokenService := identity.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	passwordService := identity.NewPasswordService()

	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:       cfg.RateLimitEnabled,
		RedisURL:      cfg.RedisURL,
		Attempts:      cfg.RateLimitAttempts,
		Window:        cfg.RateLimitWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize rate limiting")
	}

	// Command groups
	ticketCommands := command.NewTicketCommands(ticketRepo, userRepo, runner)
	assetCommands := command.NewAssetCommands(assetRepo, userRepo, runner)
	projectCommands := command.NewProjectCommands(projectRepo, userRepo, runner)
	userCommands := command.NewUserCommands(userRepo, passwordService, runner)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:              cfg.ServerHost,
			Port:              cfg.ServerPort,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RateLimitAttempts: cfg.RateLimitAttempts,
			RateLimitWindow:   cfg.RateLimitWindow,
		},
		httpadapter.Handlers{
			Auth:     httpadapter.NewAuthHandler(userRepo, passwordService, tokenService),
			Tickets:  httpadapter.NewTicketHandler(ticketCommands),
			Assets:   httpadapter.NewAssetHandler(assetCommands),
			Projects: httpadapter.NewProjectHandler(projectCommands),
			Users:    httpadapter.NewUserHandler(userCommands),
			Audit:    httpadapter.NewAuditHandler(auditRepo),
		},
		tokenService,
		limiter,
		appLogger,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutdown signal received")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
	appLogger.Info("Server stopped")
}
