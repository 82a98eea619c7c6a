package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/bootstrap"
	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/logging"
	"github.com/The-Policy-Posse/Network-Graph-1/server"
	"github.com/The-Policy-Posse/Network-Graph-1/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logger := logging.New(logging.FromConfig(cfg))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup Storage
	store, closeStore, err := bootstrap.Store(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to snapshot store", zap.Error(err))
	}
	defer closeStore()
	logger.Info("Successfully connected to snapshot store.", zap.String("driver", cfg.StoreDriver))

	// Setup Providers
	s3Client, err := bootstrap.S3Client(ctx, cfg)
	if err != nil {
		logger.Fatal("S3 client creation failed", zap.Error(err))
	}
	provider, err := bootstrap.Provider(cfg, s3Client, logger)
	if err != nil {
		logger.Fatal("Data provider setup failed", zap.Error(err))
	}
	logger.Info("Data provider loaded", zap.String("provider", provider.Name()))

	// Setup Services
	networkService := services.NewNetworkService(cfg, store, provider, bootstrap.Archive(cfg, s3Client, logger), logger)

	// Setup Cron
	if cfg.CronSchedule != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logger.Info("Running scheduled network rebuild...")
			res, err := networkService.Rebuild(ctx, cfg.RunOptions())
			if err != nil {
				logger.Error("Cron job failed", zap.Error(err))
				return
			}
			logger.Info("Cron job completed",
				zap.String("run_id", res.Snapshot.Metadata.RunID),
				zap.Int("collaborations", res.Snapshot.Metadata.TotalCollaborations))
		})
		if err != nil {
			logger.Fatal("Invalid CRON_SCHEDULE", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
		logger.Info("Scheduled rebuilds enabled", zap.String("schedule", cfg.CronSchedule))
	}

	// Setup Router
	router := server.NewRouter(cfg, networkService, logger)

	logger.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
	logger.Info("Server stopped")
}
