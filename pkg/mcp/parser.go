package mcp

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/modflow/modflow/pkg/models"
)

// Verdict is the normalized classification extracted from an LLM
// completion.
type Verdict struct {
	Decision   string
	Confidence float64
	Reasoning  string
}

// extractionPatterns are tried in order against completions that are
// not bare JSON. Models wrap their JSON in code fences or prose more
// often than not, so each stage is looser than the one before.
var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile("(?is)```\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile(`(?is)(\{[^{}]*"decision"[^{}]*\})`),
	regexp.MustCompile(`(?is)(\{.*?"decision".*?\})`),
}

// Keyword phrases for the last-resort textual analysis.
var (
	toxicPhrases = []string{
		`"decision": "toxic"`, "decision is toxic", "classify as toxic",
		"this is toxic", "message is toxic", "contains toxic", "toxic content",
		"personal attack", "harassment", "hate speech", "inappropriate",
	}
	nonToxicPhrases = []string{
		`"decision": "non-toxic"`, "decision is non-toxic", "not toxic",
		"safe message", "no toxicity", "appropriate content", "friendly", "greeting",
	}
)

// ParseVerdict turns raw completion text into a verdict. The cascade:
// strict JSON, fenced JSON blocks, embedded objects mentioning
// "decision", then keyword analysis of the prose. It always returns a
// verdict; an unreadable completion degrades to a low-confidence
// Non-Toxic.
func ParseVerdict(content string) Verdict {
	if v, ok := decodeVerdict(content); ok {
		return v
	}

	slog.Warn("Completion is not valid JSON, attempting extraction",
		"preview", preview(content))

	for _, re := range extractionPatterns {
		match := re.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		if v, ok := decodeVerdict(match[1]); ok {
			return v
		}
	}

	return keywordVerdict(content)
}

func decodeVerdict(text string) (Verdict, bool) {
	var raw struct {
		Decision   *string  `json:"decision"`
		Confidence *float64 `json:"confidence"`
		Reasoning  *string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return Verdict{}, false
	}

	v := Verdict{Decision: models.DecisionNonToxic, Confidence: 0.5}
	if raw.Decision != nil {
		v.Decision = *raw.Decision
	}
	if raw.Confidence != nil {
		v.Confidence = *raw.Confidence
	}
	if raw.Reasoning != nil {
		v.Reasoning = *raw.Reasoning
	}
	return v, true
}

func keywordVerdict(content string) Verdict {
	lower := strings.ToLower(content)

	if containsAny(lower, toxicPhrases) {
		return Verdict{
			Decision:   models.DecisionToxic,
			Confidence: 0.7,
			Reasoning:  "Text analysis - toxic indicators found",
		}
	}
	if containsAny(lower, nonToxicPhrases) {
		return Verdict{
			Decision:   models.DecisionNonToxic,
			Confidence: 0.7,
			Reasoning:  "Text analysis - no toxic indicators",
		}
	}
	return Verdict{
		Decision:   models.DecisionNonToxic,
		Confidence: 0.5,
		Reasoning:  "Unable to determine from LLM response",
	}
}

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
