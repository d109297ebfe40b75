package filter

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/modflow/modflow/pkg/metrics"
	"github.com/modflow/modflow/pkg/models"
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

// KeywordFilter matches messages against a banned-word list and the
// toxic, spam, and PII pattern sets. Whitelisted words override the
// banned-word list but not the pattern sets.
type KeywordFilter struct {
	banned        map[string]bool
	whitelist     map[string]bool
	toxicPatterns []*regexp.Regexp
	spamPatterns  []*regexp.Regexp
	piiPatterns   []*regexp.Regexp
}

// keywordResult is the intermediate verdict of the keyword stage,
// before the profanity stage combines with it.
type keywordResult struct {
	ShouldProcess bool
	Decision      string
	Confidence    float64
	Matched       []string
}

// NewKeywordFilter compiles the configured patterns. Patterns that fail
// to compile are logged and skipped rather than taking the filter down.
func NewKeywordFilter(cfg *Config) *KeywordFilter {
	kf := &KeywordFilter{
		banned:    wordSet(cfg.BannedWords),
		whitelist: wordSet(cfg.Whitelist),
	}
	kf.toxicPatterns = compilePatterns("toxic", cfg.Patterns["toxic"])
	kf.spamPatterns = compilePatterns("spam", cfg.Patterns["spam"])
	kf.piiPatterns = compilePatterns("pii", cfg.Patterns["pii"])
	return kf
}

func compilePatterns(patternType string, exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			slog.Error("Failed to compile filter pattern, skipping",
				"pattern_type", patternType, "pattern", expr, "error", err)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// BannedWordCount reports the size of the banned-word list.
func (kf *KeywordFilter) BannedWordCount() int {
	return len(kf.banned)
}

// checkBannedWords tokenizes the message and reports banned words that
// are not whitelisted.
func (kf *KeywordFilter) checkBannedWords(message string) []string {
	var matched []string
	for _, word := range wordRe.FindAllString(strings.ToLower(message), -1) {
		if kf.banned[word] && !kf.whitelist[word] {
			matched = append(matched, word)
		}
	}
	return matched
}

func checkPatterns(message string, patterns []*regexp.Regexp) []string {
	var matched []string
	for _, re := range patterns {
		matched = append(matched, re.FindAllString(message, -1)...)
	}
	return matched
}

// Filter classifies a message. PII blocks outright with high
// confidence; toxic and spam hits are forwarded to the LLM as hints.
func (kf *KeywordFilter) Filter(message string) keywordResult {
	bannedMatches := kf.checkBannedWords(message)
	toxicMatches := checkPatterns(message, kf.toxicPatterns)
	spamMatches := checkPatterns(message, kf.spamPatterns)
	piiMatches := checkPatterns(message, kf.piiPatterns)

	countMatches("banned_word", bannedMatches)
	countMatches("toxic", toxicMatches)
	countMatches("spam", spamMatches)
	countMatches("pii", piiMatches)

	all := make([]string, 0, len(bannedMatches)+len(toxicMatches)+len(spamMatches)+len(piiMatches))
	all = append(all, bannedMatches...)
	all = append(all, toxicMatches...)
	all = append(all, spamMatches...)
	all = append(all, piiMatches...)

	switch {
	case len(piiMatches) > 0:
		return keywordResult{ShouldProcess: false, Decision: models.FilterBlockPII, Confidence: 0.95, Matched: all}
	case len(toxicMatches) > 0 || len(bannedMatches) > 0:
		return keywordResult{ShouldProcess: true, Decision: models.FilterLikelyToxic, Confidence: 0.8, Matched: all}
	case len(spamMatches) > 0:
		return keywordResult{ShouldProcess: true, Decision: models.FilterLikelySpam, Confidence: 0.7, Matched: all}
	default:
		return keywordResult{ShouldProcess: true, Decision: models.FilterPass, Confidence: 0.6, Matched: all}
	}
}

func countMatches(patternType string, matches []string) {
	if len(matches) > 0 {
		metrics.FilterPatternMatchesTotal.WithLabelValues(patternType).Add(float64(len(matches)))
	}
}

// ProfanityFilter checks messages against a flat word list.
type ProfanityFilter struct {
	words map[string]bool
}

// NewProfanityFilter wraps an already-loaded word set.
func NewProfanityFilter(words map[string]bool) *ProfanityFilter {
	return &ProfanityFilter{words: words}
}

// WordCount reports the size of the profanity list.
func (pf *ProfanityFilter) WordCount() int {
	return len(pf.words)
}

// Check returns the profanity words found in the message.
func (pf *ProfanityFilter) Check(message string) []string {
	var found []string
	for _, word := range wordRe.FindAllString(strings.ToLower(message), -1) {
		if pf.words[word] {
			found = append(found, word)
		}
	}
	return found
}
