package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/modflow/modflow/pkg/metrics"
	"github.com/modflow/modflow/pkg/models"
)

// Result is the annotated outcome of one message's trip through the
// pipeline, broadcast as-is to WebSocket clients. ModerationResult is
// nil when the filter blocked the message before the LLM stage.
type Result struct {
	Type             string                    `json:"type"`
	Message          *models.ChatMessage       `json:"message"`
	FilterResult     *models.FilterVerdict     `json:"filter_result"`
	ModerationResult *models.ModerationVerdict `json:"moderation_result"`
	ProcessingTimeMs float64                   `json:"processing_time_ms"`
	Timestamp        time.Time                 `json:"timestamp"`
}

// Decision reports the headline outcome for logs and metrics.
func (r *Result) Decision() string {
	if r.ModerationResult == nil {
		return "filtered"
	}
	return r.ModerationResult.Decision
}

// Pipeline calls the filter and moderation services. Both calls degrade
// rather than fail: a dead filter passes everything through, a dead
// moderation service yields an in-band Error verdict.
type Pipeline struct {
	filterEndpoint string
	mcpEndpoint    string
	client         *http.Client
	logger         *slog.Logger
}

// NewPipelineFromEnv reads FILTER_ENDPOINT, MCP_ENDPOINT and
// REQUEST_TIMEOUT (seconds).
func NewPipelineFromEnv() *Pipeline {
	timeout := 30 * time.Second
	if v, err := strconv.ParseFloat(envOr("REQUEST_TIMEOUT", "30"), 64); err == nil && v > 0 {
		timeout = time.Duration(v * float64(time.Second))
	}
	return NewPipeline(
		envOr("FILTER_ENDPOINT", "http://lightweight-filter:8001"),
		envOr("MCP_ENDPOINT", "http://mcp-server:8000"),
		timeout,
	)
}

// NewPipeline builds a pipeline client against explicit endpoints.
func NewPipeline(filterEndpoint, mcpEndpoint string, timeout time.Duration) *Pipeline {
	return &Pipeline{
		filterEndpoint: strings.TrimSuffix(filterEndpoint, "/"),
		mcpEndpoint:    strings.TrimSuffix(mcpEndpoint, "/"),
		client:         &http.Client{Timeout: timeout},
		logger:         slog.Default().With("component", "pipeline"),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Process runs one message through filter then moderation and wraps
// the outcome into a broadcast envelope.
func (p *Pipeline) Process(ctx context.Context, msg *models.ChatMessage) *Result {
	start := time.Now()

	filterResult := p.filter(ctx, msg)

	var moderationResult *models.ModerationVerdict
	if filterResult.ShouldProcess {
		moderationResult = p.moderate(ctx, msg)
	}

	elapsed := time.Since(start)
	metrics.ChatMessageProcessingSeconds.Observe(elapsed.Seconds())

	result := &Result{
		Type:             "chat_message",
		Message:          msg,
		FilterResult:     filterResult,
		ModerationResult: moderationResult,
		ProcessingTimeMs: float64(elapsed.Microseconds()) / 1000.0,
		Timestamp:        time.Now().UTC(),
	}
	metrics.ChatMessagesTotal.WithLabelValues(msg.MessageType, result.Decision()).Inc()
	return result
}

// filter calls the lightweight filter. Failures fail open: the message
// proceeds to moderation as a plain pass.
func (p *Pipeline) filter(ctx context.Context, msg *models.ChatMessage) *models.FilterVerdict {
	var verdict models.FilterVerdict
	err := p.postJSON(ctx, p.filterEndpoint+"/filter", msg, &verdict)
	if err != nil {
		p.logger.Warn("Filter request failed, failing open", "error", err)
		metrics.ChatFilterRequestsTotal.WithLabelValues("error").Inc()
		return &models.FilterVerdict{
			ShouldProcess:   true,
			FilterDecision:  models.FilterPass,
			MatchedPatterns: []string{},
		}
	}
	metrics.ChatFilterRequestsTotal.WithLabelValues("success").Inc()
	return &verdict
}

// moderate calls the moderation gateway. Failures become an in-band
// Error verdict so the stream keeps flowing.
func (p *Pipeline) moderate(ctx context.Context, msg *models.ChatMessage) *models.ModerationVerdict {
	req := models.ModerationRequest{
		Message:      msg.Message,
		UserID:       msg.UserID,
		ChannelID:    msg.ChannelID,
		Timestamp:    msg.Timestamp.Format(time.RFC3339Nano),
		TemplateName: "moderation_prompt",
		Metadata:     msg.Metadata,
	}

	var verdict models.ModerationVerdict
	err := p.postJSON(ctx, p.mcpEndpoint+"/moderate", &req, &verdict)
	if err != nil {
		p.logger.Error("Moderation request failed", "user_id", msg.UserID, "error", err)
		metrics.ChatModerationRequestsTotal.WithLabelValues("error").Inc()
		errVerdict := models.ErrorVerdict(err.Error())
		return &errVerdict
	}
	metrics.ChatModerationRequestsTotal.WithLabelValues("success").Inc()
	return &verdict
}

func (p *Pipeline) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
