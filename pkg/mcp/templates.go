// Package mcp implements the moderation gateway: it validates incoming
// messages, renders a prompt template, calls the LLM backend, and
// normalizes whatever the model returns into a structured verdict.
package mcp

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTemplateName is used when a request names no template or an
// unknown one.
const DefaultTemplateName = "moderation_prompt"

// Template is one prompt template from moderation_templates.yaml.
type Template struct {
	Name           string `yaml:"name"`
	Version        string `yaml:"version"`
	Prompt         string `yaml:"prompt"`
	SafetyLevel    string `yaml:"safety_level"`
	ExpectedOutput string `yaml:"expected_output"`
}

// Catalogue holds the loaded prompt templates. Templates are loaded
// once at startup and read-only afterwards.
type Catalogue struct {
	templates map[string]Template
}

const defaultModerationPrompt = "Classify the following message for toxicity:\n'{chat_message}'\n\n" +
	"Respond with JSON format:\n{\"decision\": \"[Toxic/Non-Toxic]\", \"confidence\": 0.95, \"reasoning\": \"explanation\"}"

func defaultCatalogue() *Catalogue {
	return &Catalogue{templates: map[string]Template{
		DefaultTemplateName: {
			Name:           DefaultTemplateName,
			Version:        "1.0",
			Prompt:         defaultModerationPrompt,
			SafetyLevel:    "high",
			ExpectedOutput: "json",
		},
	}}
}

// LoadCatalogue reads the template file. A missing file falls back to
// the built-in moderation prompt so the service can always classify.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Template file not found, using built-in template", "path", path)
			return defaultCatalogue(), nil
		}
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	var templates map[string]Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if len(templates) == 0 {
		slog.Warn("Template file is empty, using built-in template", "path", path)
		return defaultCatalogue(), nil
	}
	// Get falls back to the default template by name, so the catalogue
	// must always carry one.
	if _, ok := templates[DefaultTemplateName]; !ok {
		slog.Warn("Template file lacks the default template, merging built-in",
			"path", path, "name", DefaultTemplateName)
		templates[DefaultTemplateName] = defaultCatalogue().templates[DefaultTemplateName]
	}
	slog.Info("Prompt templates loaded", "path", path, "count", len(templates))
	return &Catalogue{templates: templates}, nil
}

// Get resolves a template by name, silently falling back to the
// default moderation prompt for unknown or empty names.
func (c *Catalogue) Get(name string) Template {
	if tmpl, ok := c.templates[name]; ok {
		return tmpl
	}
	return c.templates[DefaultTemplateName]
}

// Render substitutes the message fields into the template. Placeholders
// are plain literals, not a templating language; unknown placeholders
// are left as-is.
func (c *Catalogue) Render(name, chatMessage, userID, channelID string) string {
	prompt := c.Get(name).Prompt
	prompt = strings.ReplaceAll(prompt, "{chat_message}", chatMessage)
	prompt = strings.ReplaceAll(prompt, "{user_id}", userID)
	prompt = strings.ReplaceAll(prompt, "{channel_id}", channelID)
	return prompt
}

// Names lists the loaded template names, sorted for stable output.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
