package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplatesYAML = `
moderation_prompt:
  name: moderation_prompt
  version: "2.1"
  prompt: "Classify '{chat_message}' from {user_id} in {channel_id}"
  safety_level: high
  expected_output: json
strict_prompt:
  name: strict_prompt
  version: "1.0"
  prompt: "Strictly judge: {chat_message}"
  safety_level: maximum
  expected_output: json
`

func loadTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moderation_templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplatesYAML), 0o600))
	cat, err := LoadCatalogue(path)
	require.NoError(t, err)
	return cat
}

func TestLoadCatalogue_MissingFileUsesBuiltin(t *testing.T) {
	cat, err := LoadCatalogue(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	tmpl := cat.Get(DefaultTemplateName)
	assert.Equal(t, "1.0", tmpl.Version)
	assert.Contains(t, tmpl.Prompt, "{chat_message}")
}

func TestLoadCatalogue_MergesBuiltinDefaultWhenAbsent(t *testing.T) {
	// An operator catalogue without moderation_prompt would leave the
	// unknown-name fallback with a zero template and an empty prompt.
	const withoutDefault = `
strict_prompt:
  name: strict_prompt
  version: "1.0"
  prompt: "Strictly judge: {chat_message}"
  safety_level: maximum
  expected_output: json
`
	path := filepath.Join(t.TempDir(), "moderation_templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(withoutDefault), 0o600))
	cat, err := LoadCatalogue(path)
	require.NoError(t, err)

	tmpl := cat.Get("does_not_exist")
	assert.Equal(t, DefaultTemplateName, tmpl.Name)
	assert.Equal(t, "1.0", tmpl.Version)
	assert.Contains(t, tmpl.Prompt, "{chat_message}")

	// The operator's own templates are untouched.
	assert.Equal(t, "strict_prompt", cat.Get("strict_prompt").Name)
	assert.Equal(t, []string{"moderation_prompt", "strict_prompt"}, cat.Names())
}

func TestCatalogue_UnknownNameFallsBack(t *testing.T) {
	cat := loadTestCatalogue(t)

	tmpl := cat.Get("does_not_exist")
	assert.Equal(t, DefaultTemplateName, tmpl.Name)
	assert.Equal(t, "2.1", tmpl.Version)
}

func TestCatalogue_Render(t *testing.T) {
	cat := loadTestCatalogue(t)

	prompt := cat.Render(DefaultTemplateName, "hello there", "user_0001", "general")
	assert.Equal(t, "Classify 'hello there' from user_0001 in general", prompt)
}

func TestCatalogue_RenderIsLiteralReplacement(t *testing.T) {
	cat := loadTestCatalogue(t)

	// Braces in the message itself must not be interpreted.
	prompt := cat.Render(DefaultTemplateName, "use {chat_message} wisely", "u", "c")
	assert.Contains(t, prompt, "use {chat_message} wisely")
}

func TestCatalogue_Names(t *testing.T) {
	cat := loadTestCatalogue(t)
	assert.Equal(t, []string{"moderation_prompt", "strict_prompt"}, cat.Names())
}
