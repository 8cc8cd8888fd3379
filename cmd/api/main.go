package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scentbase-backend/infrastructure/config"
	"scentbase-backend/infrastructure/di"
	"scentbase-backend/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Create router
	router := rest.NewRouter(rest.Deps{
		Config:            container.Config,
		Logger:            container.Logger,
		CatalogCache:      container.CatalogCache,
		CatalogService:    container.CatalogService,
		ReviewService:     container.ReviewService,
		UserService:       container.UserService,
		DiscussionService: container.DiscussionService,
		JWTVerifier:       container.JWTVerifier,
		JWTGenerator:      container.JWTGenerator,
		OwnershipPolicy:   container.OwnershipPolicy,
	})

	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Warm the catalogue snapshot so the first request doesn't pay for the
	// initial load. A cold store at boot is not fatal; the cache retries on
	// the next read.
	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := container.CatalogCache.Snapshot(warmCtx); err != nil {
		container.Logger.Warn("Catalog warmup failed", zap.Error(err))
	}
	warmCancel()

	// Start server in goroutine
	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.Duration("catalogCacheTTL", cfg.CatalogCacheTTL),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
