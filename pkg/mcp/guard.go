package mcp

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrInvalidInput rejects messages that look like prompt injection or
// exceed the length limit. Callers map it to a 400 without echoing the
// matched pattern back to the client.
var ErrInvalidInput = errors.New("invalid input detected")

const maxMessageLength = 2000

// injectionMarkers are matched as substrings of the lowercased message.
// Deliberately broad: a false positive here just skips one LLM call.
var injectionMarkers = []string{
	"ignore previous instructions",
	"system:",
	"assistant:",
	"user:",
	"prompt:",
	"###",
	"---",
}

// ValidateInput screens a message before it is embedded into a prompt.
func ValidateInput(message string) error {
	lower := strings.ToLower(message)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			slog.Warn("Potential prompt injection detected", "marker", marker)
			return ErrInvalidInput
		}
	}
	if len(message) > maxMessageLength {
		slog.Warn("Message exceeds length limit", "length", len(message))
		return ErrInvalidInput
	}
	return nil
}
