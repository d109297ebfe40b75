// Moderation gateway service: renders prompt templates, calls the LLM
// backend, and normalizes completions into structured verdicts.
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

	"github.com/modflow/modflow/pkg/llm"
	"github.com/modflow/modflow/pkg/mcp"
	"github.com/modflow/modflow/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	templatesPath := flag.String("templates",
		getEnv("TEMPLATES_PATH", "./config/moderation_templates.yaml"),
		"Path to prompt template file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	httpPort := getEnv("HTTP_PORT", "8000")
	slog.Info("Starting moderation gateway",
		"version", version.Full(), "http_port", httpPort, "templates", *templatesPath)

	catalogue, err := mcp.LoadCatalogue(*templatesPath)
	if err != nil {
		slog.Error("Failed to load prompt templates", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewClient(llm.ConfigFromEnv())
	svc := mcp.NewService(catalogue, llmClient)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	mcp.NewServer(svc).RegisterRoutes(router)

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
