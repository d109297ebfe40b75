package models

// Filter decisions. PII and rate-limit hits block the message before it
// reaches the LLM; toxic/spam hints are forwarded so the LLM gets the
// final word.
const (
	FilterPass        = "pass"
	FilterFlagged     = "flagged"
	FilterLikelyToxic = "likely_toxic"
	FilterLikelySpam  = "likely_spam"
	FilterBlockPII    = "block_pii"
	FilterRateLimited = "rate_limited"
)

// Filter types identifying which sub-filter produced a verdict.
const (
	FilterTypeKeyword   = "keyword"
	FilterTypeProfanity = "profanity"
	FilterTypeRateLimit = "rate_limit"
	FilterTypeCombined  = "combined"
)

// FilterVerdict is the result of the lightweight pre-classifier.
type FilterVerdict struct {
	ShouldProcess    bool     `json:"should_process"`
	FilterDecision   string   `json:"filter_decision"`
	Confidence       float64  `json:"confidence"`
	MatchedPatterns  []string `json:"matched_patterns"`
	ProcessingTimeMs float64  `json:"processing_time_ms"`
	FilterType       string   `json:"filter_type"`
}

// Moderation decisions produced by the LLM stage.
const (
	DecisionToxic    = "Toxic"
	DecisionNonToxic = "Non-Toxic"
	DecisionError    = "Error"
)

// ModerationRequest is the body of POST /moderate.
type ModerationRequest struct {
	Message      string         `json:"message" binding:"required"`
	UserID       string         `json:"user_id" binding:"required"`
	ChannelID    string         `json:"channel_id" binding:"required"`
	Timestamp    string         `json:"timestamp,omitempty"`
	TemplateName string         `json:"template_name"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ModerationVerdict is the normalized LLM classification. The
// template_version echoes the version of the template actually used.
type ModerationVerdict struct {
	Decision         string  `json:"decision"`
	Confidence       float64 `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	TemplateVersion  string  `json:"template_version"`
}

// ErrorVerdict builds the in-band verdict substituted when the LLM
// backend is unreachable. It never blocks the pipeline.
func ErrorVerdict(reason string) ModerationVerdict {
	return ModerationVerdict{
		Decision:   DecisionError,
		Confidence: 0.0,
		Reasoning:  reason,
	}
}
