package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "sharebite/internal/api/http"
	"sharebite/internal/bootstrap"
	"sharebite/internal/config"
	"sharebite/internal/jobs"
	"sharebite/internal/logger"
	"sharebite/internal/repository"
	"sharebite/internal/repository/memory"
	"sharebite/internal/repository/postgres"
	"sharebite/internal/scheduler"
	"sharebite/internal/security"
	"sharebite/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Share a Bite API...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "database", cfg.Database.Type)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	ctx := context.Background()
	if _, err := bootstrap.EnsureAdmin(ctx, cfg.Admin, store.Organizations); err != nil {
		logger.Error("Failed to ensure admin account", "error", err)
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Services
	var emailSvc service.EmailService
	if cfg.Email.QueueWorkers > 0 {
		var queue *service.EmailQueue
		emailSvc, queue = service.NewQueuedEmailService(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.FromName,
			cfg.Email.QueueWorkers, cfg.Email.QueueSize, cfg.Email.MaxRetries)
		queue.Start(ctx)
		defer queue.Close()
	} else {
		emailSvc = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.FromName)
	}
	authSvc := service.NewAuthService(store.Organizations, tokenManager, emailSvc)
	foodSvc := service.NewFoodService(store.FoodPosts, store.Organizations, emailSvc)
	adminSvc := service.NewAdminService(store.Organizations, store.FoodPosts, emailSvc)
	reportSvc := service.NewReportService(store.Reports, store.Organizations)

	router := httpapi.NewRouter(httpapi.Services{
		Auth:   authSvc,
		Food:   foodSvc,
		Admin:  adminSvc,
		Report: reportSvc,
	}, tokenManager, httpapi.RouterOptions{
		PathPrefix:     "/api",
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	// Embedded scheduler
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Embedded {
		runner := jobs.NewJobRunner(&jobs.Services{Food: foodSvc, Admin: adminSvc}, cfg)
		cronScheduler, err = scheduler.NewScheduler(runner)
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	srv := &http.Server{
		Addr:        cfg.GetServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	logger.Info("Server stopped. Goodbye!")
}

// openStore selects the repository backend named in the configuration.
func openStore(cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Database.Type == "memory" {
		logger.Info("Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database schema applied")
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}
