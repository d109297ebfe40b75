package filter

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modflow/modflow/pkg/models"
)

// Filter names accepted by Toggle.
const (
	FilterNameKeywords  = "keywords"
	FilterNameProfanity = "profanity"
	FilterNameRateLimit = "rate_limit"
)

// Service runs a message through the enabled sub-filters in order:
// rate limit, keywords, profanity. Rate-limit and PII hits terminate
// early; everything else is combined into a single verdict.
type Service struct {
	keyword   *KeywordFilter
	profanity *ProfanityFilter
	rateLimit *RateLimiter

	mu      sync.RWMutex
	enabled map[string]bool

	logger *slog.Logger
}

// NewService builds the filter stack from the given config and
// profanity list paths.
func NewService(configPath, profanityPath string) (*Service, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	profanity, err := LoadProfanityList(profanityPath)
	if err != nil {
		return nil, err
	}
	return &Service{
		keyword:   NewKeywordFilter(cfg),
		profanity: NewProfanityFilter(profanity),
		rateLimit: NewRateLimiter(),
		enabled: map[string]bool{
			FilterNameKeywords:  true,
			FilterNameProfanity: true,
			FilterNameRateLimit: true,
		},
		logger: slog.Default().With("component", "filter"),
	}, nil
}

// Process classifies a chat message. It never fails the message: any
// panic in the filter stack is logged and converted into a pass verdict
// with neutral confidence so the LLM stage still sees the message.
func (s *Service) Process(msg *models.ChatMessage) (verdict models.FilterVerdict) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Filter panicked, failing open", "user_id", msg.UserID, "panic", r)
			verdict = models.FilterVerdict{
				ShouldProcess:    true,
				FilterDecision:   models.FilterPass,
				Confidence:       0.5,
				MatchedPatterns:  []string{},
				ProcessingTimeMs: msSince(start),
				FilterType:       models.FilterTypeCombined,
			}
		}
	}()

	if s.filterEnabled(FilterNameRateLimit) && s.rateLimit.IsRateLimited(msg.UserID) {
		return models.FilterVerdict{
			ShouldProcess:    false,
			FilterDecision:   models.FilterRateLimited,
			Confidence:       1.0,
			MatchedPatterns:  []string{"rate_limit_exceeded"},
			ProcessingTimeMs: msSince(start),
			FilterType:       models.FilterTypeRateLimit,
		}
	}

	var kw keywordResult
	if s.filterEnabled(FilterNameKeywords) {
		kw = s.keyword.Filter(msg.Message)
		if !kw.ShouldProcess {
			return models.FilterVerdict{
				ShouldProcess:    false,
				FilterDecision:   kw.Decision,
				Confidence:       kw.Confidence,
				MatchedPatterns:  patterns(kw.Matched),
				ProcessingTimeMs: msSince(start),
				FilterType:       models.FilterTypeKeyword,
			}
		}
	}

	var profanityMatches []string
	if s.filterEnabled(FilterNameProfanity) {
		profanityMatches = s.profanity.Check(msg.Message)
		countMatches("profanity", profanityMatches)
	}

	all := append(append([]string{}, kw.Matched...), profanityMatches...)

	decision := models.FilterPass
	confidence := 0.9
	if kw.Decision == models.FilterLikelyToxic || len(profanityMatches) > 0 {
		decision = models.FilterFlagged
		confidence = kw.Confidence
		if len(profanityMatches) > 0 && confidence < 0.7 {
			confidence = 0.7
		}
	}

	return models.FilterVerdict{
		ShouldProcess:    true,
		FilterDecision:   decision,
		Confidence:       confidence,
		MatchedPatterns:  patterns(all),
		ProcessingTimeMs: msSince(start),
		FilterType:       models.FilterTypeCombined,
	}
}

// Toggle enables or disables one sub-filter. Unknown names are
// rejected so typos do not silently no-op.
func (s *Service) Toggle(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enabled[name]; !ok {
		return fmt.Errorf("filter %q not found", name)
	}
	s.enabled[name] = enabled
	s.logger.Info("Filter toggled", "filter", name, "enabled", enabled)
	return nil
}

// EnabledFilters returns a snapshot of the toggle states.
func (s *Service) EnabledFilters() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]bool, len(s.enabled))
	for name, on := range s.enabled {
		snapshot[name] = on
	}
	return snapshot
}

// Stats summarizes the loaded lists and rate-limit tracking for the
// /stats endpoint.
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"active_users":          s.rateLimit.ActiveUsers(),
		"total_banned_words":    s.keyword.BannedWordCount(),
		"total_profanity_words": s.profanity.WordCount(),
		"enabled_filters":       s.EnabledFilters(),
	}
}

// ConfigSummary describes the running configuration for GET /config.
func (s *Service) ConfigSummary() map[string]any {
	return map[string]any{
		"enabled_filters":         s.EnabledFilters(),
		"banned_words_count":      s.keyword.BannedWordCount(),
		"profanity_words_count":   s.profanity.WordCount(),
		"rate_limit_window":       int(rateLimitWindow.Seconds()),
		"max_messages_per_window": maxMessagesPerWindow,
	}
}

func (s *Service) filterEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[name]
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// patterns normalizes a nil slice to an empty one so the JSON contract
// always carries an array.
func patterns(matched []string) []string {
	if matched == nil {
		return []string{}
	}
	return matched
}
