package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pokerbook/pokerbook/docs"
	"github.com/pokerbook/pokerbook/internal/config"
	"github.com/pokerbook/pokerbook/internal/database"
	"github.com/pokerbook/pokerbook/internal/group"
	"github.com/pokerbook/pokerbook/internal/player"
	"github.com/pokerbook/pokerbook/internal/session"
	"github.com/pokerbook/pokerbook/internal/settlement"
	"github.com/pokerbook/pokerbook/internal/summary"
	"github.com/pokerbook/pokerbook/pkg/metrics"
	mw "github.com/pokerbook/pokerbook/pkg/middleware"
	"github.com/pokerbook/pokerbook/pkg/response"
)

// @title        Pokerbook API
// @version      1.0
// @description  Poker group session tracking: sessions, settlements, leaderboards and session summaries.
// @BasePath     /api/v1
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := database.Migrate(db, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	metricsManager := metrics.NewManager()

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Player feature
	playerRepo := player.NewRepository(db)
	playerService := player.NewService(playerRepo)
	playerHandler := player.NewHandler(playerService)

	// Settlement feature
	settlementService := settlement.NewService(metricsManager, logger)
	settlementHandler := settlement.NewHandler(settlementService)

	// Session feature (settles through the settlement service)
	sessionRepo := session.NewRepository(db)
	sessionService := session.NewService(sessionRepo, groupRepo, settlementService, logger)
	sessionHandler := session.NewHandler(sessionService)

	// Summary feature (read-only over session history)
	summaryService := summary.NewService(sessionRepo, groupRepo, metricsManager, logger)
	summaryHandler := summary.NewHandler(summaryService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger, metricsManager))
	r.Use(mw.Recovery(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), db); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metricsManager.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthDisabled {
			logger.Warn("authentication disabled, using X-Test-User-ID")
			r.Use(mw.DevUser)
		} else {
			r.Use(mw.Auth(cfg.JWTSecret))
		}

		groupRouter := groupHandler.Routes()
		groupRouter.Mount("/{groupId}/players", playerHandler.Routes())
		groupRouter.Mount("/{groupId}/sessions", sessionHandler.Routes())
		groupRouter.Mount("/{groupId}/stats", summaryHandler.Routes())

		r.Mount("/groups", groupRouter)
		r.Mount("/settlements", settlementHandler.Routes())
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
