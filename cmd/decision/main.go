// Decision handler service: turns moderation verdicts into enforcement
// actions, notifies the webhook, and persists the audit trail.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/modflow/modflow/pkg/decision"
	"github.com/modflow/modflow/pkg/notifier"
	"github.com/modflow/modflow/pkg/policy"
	"github.com/modflow/modflow/pkg/storage"
	"github.com/modflow/modflow/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	httpPort := getEnv("HTTP_PORT", "8003")
	slog.Info("Starting decision handler", "version", version.Full(), "http_port", httpPort)

	ctx := context.Background()

	store, err := storage.NewStore(ctx, storage.ConfigFromEnv())
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Connected to PostgreSQL database")

	webhook := notifier.New(os.Getenv("NOTIFICATION_WEBHOOK_URL"))
	if webhook.Enabled() {
		slog.Info("Webhook notifications enabled")
	}

	svc := decision.NewService(store, policy.NewExecutor(webhook))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	decision.NewServer(svc).RegisterRoutes(router)

	srv := &http.Server{Addr: ":" + httpPort, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Drain the persistence queue before closing the pool.
	svc.Stop()
	slog.Info("Shutdown complete")
}
