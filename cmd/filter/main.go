// Lightweight filter service: fast keyword, profanity, and rate-limit
// screening in front of the LLM moderation stage.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/modflow/modflow/pkg/filter"
	"github.com/modflow/modflow/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config",
		getEnv("FILTER_CONFIG_PATH", "./config/filter_config.yaml"),
		"Path to filter configuration file")
	profanityPath := flag.String("profanity-list",
		getEnv("PROFANITY_LIST_PATH", "./config/banned_words.txt"),
		"Path to profanity word list")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	httpPort := getEnv("HTTP_PORT", "8001")
	slog.Info("Starting lightweight filter",
		"version", version.Full(), "http_port", httpPort, "config", *configPath)

	svc, err := filter.NewService(*configPath, *profanityPath)
	if err != nil {
		slog.Error("Failed to initialize filter service", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	filter.NewServer(svc).RegisterRoutes(router)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	slog.Info("Shutdown complete")
}
