// Chat simulator service: fabricates chat traffic, runs it through the
// moderation pipeline, and streams annotated results to WebSocket
// clients.
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

	"github.com/modflow/modflow/pkg/simulator"
	"github.com/modflow/modflow/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	samplesPath := flag.String("samples",
		getEnv("SAMPLE_MESSAGES_PATH", "./config/sample_messages.json"),
		"Path to sample message pools")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	httpPort := getEnv("HTTP_PORT", "8002")
	interval := simulator.MessageIntervalFromEnv()
	slog.Info("Starting chat simulator",
		"version", version.Full(), "http_port", httpPort, "message_interval", interval)

	sim := simulator.New(
		simulator.NewGenerator(*samplesPath),
		simulator.NewPipelineFromEnv(),
		simulator.NewHub(),
		interval,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	simulator.NewServer(sim).RegisterRoutes(router)

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

	sim.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	slog.Info("Shutdown complete")
}
