// Package llm wraps the OpenAI-compatible chat-completions backend used
// for moderation verdicts. Different model families need different
// message shaping and sampling parameters; the family is detected from
// the configured model name.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/modflow/modflow/pkg/metrics"
)

// ErrUnavailable is returned when all retry attempts against the LLM
// backend have been exhausted.
var ErrUnavailable = errors.New("llm service unavailable")

const systemGuidance = "You are a content moderation assistant. Respond only in the requested JSON format."

// Model families with distinct request shaping.
const (
	FamilyMistral  = "mistral"
	FamilyDeepseek = "deepseek"
	FamilyLlama    = "llama"
	FamilyQwen     = "qwen"
	FamilyDefault  = "default"
)

// familySubstrings is checked in order against the lowercased model
// name and its path basename.
var familySubstrings = []string{FamilyMistral, FamilyDeepseek, FamilyLlama, FamilyQwen}

// familyTopP holds the family-specific top_p overrides. Families not
// listed use the backend default.
var familyTopP = map[string]float32{
	FamilyMistral:  0.9,
	FamilyDeepseek: 0.95,
}

// Config holds the LLM backend settings, read from the environment.
type Config struct {
	Endpoint   string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// ConfigFromEnv reads LLM_ENDPOINT, LLM_MODEL, LLM_TIMEOUT (seconds)
// and LLM_MAX_RETRIES with the deployment defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		Endpoint:   getEnv("LLM_ENDPOINT", "http://deepseek-llm:8080/v1/chat/completions"),
		Model:      getEnv("LLM_MODEL", "deepseek-ai/DeepSeek-R1-Distill-Llama-8B"),
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
	if v, err := strconv.ParseFloat(getEnv("LLM_TIMEOUT", "30"), 64); err == nil && v > 0 {
		cfg.Timeout = time.Duration(v * float64(time.Second))
	}
	if v, err := strconv.Atoi(getEnv("LLM_MAX_RETRIES", "3")); err == nil && v > 0 {
		cfg.MaxRetries = v
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Client calls the chat-completions endpoint with retry and
// exponential backoff.
type Client struct {
	api    *openai.Client
	cfg    Config
	family string
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewClient builds a client for the configured backend. The endpoint
// may be given with or without the /chat/completions suffix.
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig("")
	apiCfg.BaseURL = strings.TrimSuffix(strings.TrimSuffix(cfg.Endpoint, "/"), "/chat/completions")

	family := DetectFamily(cfg.Model)
	logger := slog.Default().With("component", "llm")
	logger.Info("LLM client initialized", "model", cfg.Model, "family", family, "endpoint", cfg.Endpoint)

	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		cfg:    cfg,
		family: family,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Family reports the detected model family.
func (c *Client) Family() string {
	return c.family
}

// DetectFamily classifies a model name by substring, also checking the
// path basename so local model paths like /models/mistral-7b resolve.
func DetectFamily(model string) string {
	lower := strings.ToLower(model)
	base := path.Base(lower)
	for _, fam := range familySubstrings {
		if strings.Contains(lower, fam) || strings.Contains(base, fam) {
			return fam
		}
	}
	slog.Warn("Unknown model family, using default request format", "model", model)
	return FamilyDefault
}

// buildMessages shapes the conversation for the model family. Mistral
// models reject system roles, so the guidance is folded into a single
// instruction-wrapped user turn.
func (c *Client) buildMessages(prompt string) []openai.ChatCompletionMessage {
	if c.family == FamilyMistral {
		combined := fmt.Sprintf("<s>[INST] %s\n\n%s [/INST]", systemGuidance, prompt)
		return []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: combined},
		}
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemGuidance},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
}

func (c *Client) buildRequest(prompt string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    c.buildMessages(prompt),
		Temperature: 0.1,
		MaxTokens:   500,
	}
	if topP, ok := familyTopP[c.family]; ok {
		req.TopP = topP
	}
	return req
}

// Generate sends the prompt and returns the raw completion text. Each
// attempt gets its own timeout; failures back off 2^attempt seconds.
// After the last attempt the error wraps ErrUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := c.buildRequest(prompt)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		resp, err := c.api.CreateChatCompletion(attemptCtx, req)
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				err = errors.New("empty choices in completion response")
			} else {
				duration := time.Since(start)
				metrics.LLMResponseTimeSeconds.Observe(duration.Seconds())
				c.logger.Info("LLM response received",
					"family", c.family, "duration", duration.Round(time.Millisecond))
				return resp.Choices[0].Message.Content, nil
			}
		}

		lastErr = err
		c.logger.Warn("LLM request attempt failed",
			"attempt", attempt+1, "family", c.family, "error", err)

		if attempt < c.cfg.MaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := c.sleep(ctx, backoff); err != nil {
				return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
			}
		}
	}
	return "", fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
