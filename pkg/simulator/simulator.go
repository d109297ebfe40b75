package simulator

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/modflow/modflow/pkg/models"
)

// Simulator owns the continuous message stream. At most one simulation
// loop runs at a time; Start on a running simulator is a no-op.
type Simulator struct {
	gen      *Generator
	pipeline *Pipeline
	hub      *Hub
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// MessageIntervalFromEnv reads MESSAGE_INTERVAL (seconds, fractional
// allowed) with a 2s default.
func MessageIntervalFromEnv() time.Duration {
	if v, err := strconv.ParseFloat(envOr("MESSAGE_INTERVAL", "2.0"), 64); err == nil && v > 0 {
		return time.Duration(v * float64(time.Second))
	}
	return 2 * time.Second
}

// New assembles a simulator.
func New(gen *Generator, pipeline *Pipeline, hub *Hub, interval time.Duration) *Simulator {
	return &Simulator{
		gen:      gen,
		pipeline: pipeline,
		hub:      hub,
		interval: interval,
		logger:   slog.Default().With("component", "simulator"),
	}
}

// Hub exposes the broadcast hub for the HTTP layer.
func (s *Simulator) Hub() *Hub { return s.hub }

// Generator exposes the message generator for the HTTP layer.
func (s *Simulator) Generator() *Generator { return s.gen }

// Interval reports the configured message interval.
func (s *Simulator) Interval() time.Duration { return s.interval }

// Running reports whether the simulation loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the simulation loop. Returns false if one is already
// running.
func (s *Simulator) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)

	s.logger.Info("Chat simulation started", "interval", s.interval)
	return true
}

// Stop halts the simulation loop and waits for it to exit.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Chat simulation stopped")
}

func (s *Simulator) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		msg := s.gen.Generate("")
		result := s.ProcessAndBroadcast(ctx, msg)
		s.logger.Info("Simulated message",
			"username", msg.Username,
			"preview", preview(msg.Message),
			"decision", result.Decision(),
			"processing_ms", result.ProcessingTimeMs)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessAndBroadcast pushes one message through the pipeline and fans
// the result out to all connected clients.
func (s *Simulator) ProcessAndBroadcast(ctx context.Context, msg *models.ChatMessage) *Result {
	result := s.pipeline.Process(ctx, msg)
	s.hub.Broadcast(result)
	return result
}

func preview(s string) string {
	if len(s) > 50 {
		return s[:50]
	}
	return s
}
