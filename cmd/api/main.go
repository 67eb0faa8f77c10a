package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/auth"
	"github.com/fitgrow/fitgrow-backend/internal/config"
	"github.com/fitgrow/fitgrow-backend/internal/handler"
	"github.com/fitgrow/fitgrow-backend/internal/logging"
	"github.com/fitgrow/fitgrow-backend/internal/repository"
	"github.com/fitgrow/fitgrow-backend/internal/scheduler"
	"github.com/fitgrow/fitgrow-backend/internal/service"
	"github.com/fitgrow/fitgrow-backend/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg.LogLevel, os.Stdout)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize layers
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to create token manager: %v", err)
	}
	svc := service.NewService(store, tokens, logger, cfg.Location)
	h := handler.NewHandler(svc, logger)
	router := handler.NewRouter(h, handler.RouterOptions{
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	var digest *scheduler.Scheduler
	if cfg.DigestEnabled {
		digest = scheduler.New(svc, email.NewSender(cfg, logger), logger)
		if err := digest.Start(cfg.DigestSchedule); err != nil {
			logger.Fatalf("Failed to start digest scheduler: %v", err)
		}
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s (store=%s)", addr, cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")

	if digest != nil {
		<-digest.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}

// openStore returns the configured store and a function releasing it
func openStore(cfg *config.Config, logger *logrus.Logger) (service.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemory(), func() {}, nil
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := repository.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return repo, func() { db.Close() }, nil
}
