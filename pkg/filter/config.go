// Package filter implements the lightweight pre-classifier that runs
// before the LLM stage. It is pure CPU work: keyword and pattern
// matching, a profanity list, and a per-user sliding-window rate limit.
package filter

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk filter configuration (filter_config.yaml).
type Config struct {
	BannedWords []string            `yaml:"banned_words"`
	Patterns    map[string][]string `yaml:"patterns"`
	Whitelist   []string            `yaml:"whitelist"`
}

// Default word lists and patterns used when no configuration file is
// present. The service must keep filtering even with an empty config
// volume, so these mirror a minimal sane deployment.
var (
	defaultBannedWords = []string{
		"spam", "scam", "fake", "bot", "hack", "cheat",
		"idiot", "stupid", "moron", "loser", "noob",
	}

	defaultToxicPatterns = []string{
		`(?i)\b(kill\s+yourself|kys)\b`,
		`(?i)\b(go\s+die|die\s+in\s+a\s+fire)\b`,
		`(?i)\b(hate\s+you|you\s+suck)\b`,
	}

	defaultSpamPatterns = []string{
		`(?i)(bit\.ly|tinyurl|t\.co)/\w+`,
		`(?i)(free\s+money|click\s+here|buy\s+now)`,
	}

	defaultPIIPatterns = []string{
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		`\b\d{3}-\d{3}-\d{4}\b`,
		`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
		`\b\d{3}-\d{2}-\d{4}\b`,
	}

	defaultProfanityWords = []string{"damn", "hell", "crap", "stupid", "idiot"}
)

// LoadConfig reads filter_config.yaml from path. A missing file is not
// an error: the built-in defaults are returned so the filter keeps
// running with reduced coverage.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Filter config not found, using built-in defaults", "path", path)
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading filter config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing filter config: %w", err)
	}
	slog.Info("Filter configuration loaded", "path", path,
		"banned_words", len(cfg.BannedWords), "whitelist", len(cfg.Whitelist))
	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		BannedWords: defaultBannedWords,
		Patterns: map[string][]string{
			"toxic": defaultToxicPatterns,
			"spam":  defaultSpamPatterns,
			"pii":   defaultPIIPatterns,
		},
	}
}

// LoadProfanityList reads one word per line from path. Blank lines are
// skipped and words are lowercased. A missing file falls back to the
// built-in list.
func LoadProfanityList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Profanity list not found, using built-in defaults", "path", path)
			return wordSet(defaultProfanityWords), nil
		}
		return nil, fmt.Errorf("opening profanity list: %w", err)
	}
	defer f.Close()

	words := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" {
			words[word] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading profanity list: %w", err)
	}
	slog.Info("Profanity list loaded", "path", path, "words", len(words))
	return words, nil
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}
