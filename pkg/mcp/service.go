package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/modflow/modflow/pkg/models"
)

// Completer generates raw text for a rendered prompt. Satisfied by
// llm.Client; narrowed to an interface so tests can stub the backend.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service orchestrates one moderation request: guard, render, complete,
// parse.
type Service struct {
	catalogue *Catalogue
	completer Completer
	logger    *slog.Logger
}

// NewService wires the template catalogue and LLM backend together.
func NewService(catalogue *Catalogue, completer Completer) *Service {
	return &Service{
		catalogue: catalogue,
		completer: completer,
		logger:    slog.Default().With("component", "mcp"),
	}
}

// Templates exposes the loaded template names.
func (s *Service) Templates() []string {
	return s.catalogue.Names()
}

// Moderate classifies one message. Validation failures return
// ErrInvalidInput; backend exhaustion surfaces the llm error so the
// handler can map it to 503. The verdict carries the version of the
// template actually used, which matters when an unknown name fell back
// to the default.
func (s *Service) Moderate(ctx context.Context, req *models.ModerationRequest) (*models.ModerationVerdict, error) {
	start := time.Now()

	if err := ValidateInput(req.Message); err != nil {
		return nil, err
	}

	tmpl := s.catalogue.Get(req.TemplateName)
	prompt := s.catalogue.Render(req.TemplateName, req.Message, req.UserID, req.ChannelID)

	content, err := s.completer.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	verdict := ParseVerdict(content)
	s.logger.Info("Moderation verdict",
		"user_id", req.UserID,
		"decision", verdict.Decision,
		"confidence", verdict.Confidence,
		"template", tmpl.Name)

	return &models.ModerationVerdict{
		Decision:         verdict.Decision,
		Confidence:       verdict.Confidence,
		Reasoning:        verdict.Reasoning,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		TemplateVersion:  tmpl.Version,
	}, nil
}
