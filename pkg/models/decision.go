package models

import "time"

// Severity levels accepted by the decision handler. The MCP verdict does
// not carry a severity; callers that omit it get SeverityMedium.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Moderation actions in escalation order.
const (
	ActionNone    = "none"
	ActionWarn    = "warn"
	ActionTimeout = "timeout"
	ActionKick    = "kick"
	ActionBan     = "ban"
)

// ModerationDecision is the body of POST /process: an LLM verdict
// attributed to a user, ready for policy evaluation.
type ModerationDecision struct {
	UserID     string         `json:"user_id" binding:"required"`
	ChannelID  string         `json:"channel_id" binding:"required"`
	MessageID  string         `json:"message_id,omitempty"`
	Decision   string         `json:"decision" binding:"required"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Severity   string         `json:"severity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NormalizeSeverity maps an absent or unknown severity to medium,
// matching the upstream default.
func (d *ModerationDecision) NormalizeSeverity() {
	switch d.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		d.Severity = SeverityMedium
	}
}

// ActionResponse reports the executed action back to the caller.
type ActionResponse struct {
	ActionTaken string    `json:"action_taken"`
	Success     bool      `json:"success"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// UserHistory is the violation snapshot returned by
// GET /user/{id}/history.
type UserHistory struct {
	UserID         string     `json:"user_id"`
	ViolationCount int        `json:"violation_count"`
	TotalScore     float64    `json:"total_score"`
	LastViolation  *time.Time `json:"last_violation,omitempty"`
	Status         string     `json:"status"`
}

// DecisionRecord is one persisted row of the audit trail.
type DecisionRecord struct {
	ID          int64          `json:"id"`
	UserID      string         `json:"user_id"`
	ChannelID   string         `json:"channel_id"`
	MessageID   string         `json:"message_id,omitempty"`
	Decision    string         `json:"decision"`
	Confidence  float64        `json:"confidence"`
	Reasoning   string         `json:"reasoning,omitempty"`
	Severity    string         `json:"severity"`
	ActionTaken string         `json:"action_taken"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
