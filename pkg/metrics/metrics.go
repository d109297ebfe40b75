// Package metrics holds the Prometheus collectors shared across the
// pipeline services. Metric names are part of the operational contract
// scraped by dashboards; do not rename them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Filter service.
var (
	FilterRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filter_requests_total",
		Help: "Total filter requests",
	}, []string{"decision", "filter_type"})

	FilterProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "filter_processing_seconds",
		Help:    "Time spent processing filter requests",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	FilterPatternMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filter_pattern_matches_total",
		Help: "Pattern matches by type",
	}, []string{"pattern_type"})
)

// MCP service.
var (
	MCPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_requests_total",
		Help: "Total MCP requests",
	}, []string{"endpoint", "status"})

	MCPRequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "mcp_request_duration_seconds",
		Help: "Request duration",
	})

	LLMResponseTimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "llm_response_time_seconds",
		Help:    "LLM response time",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// Decision service.
var (
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisions_total",
		Help: "Total decisions processed",
	}, []string{"action", "severity"})

	ActionsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actions_executed_total",
		Help: "Total actions executed",
	}, []string{"action_type"})

	DecisionProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "decision_processing_seconds",
		Help: "Decision processing time",
	})
)

// Chat simulator / ingress.
var (
	ChatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"message_type", "decision"})

	ChatMessageProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "chat_message_processing_seconds",
		Help: "Time spent processing chat messages",
	})

	ChatActiveWebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	ChatModerationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_moderation_requests_total",
		Help: "Total moderation requests",
	}, []string{"status"})

	ChatFilterRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_filter_requests_total",
		Help: "Total filter requests",
	}, []string{"status"})
)
