package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.ElementsMatch(t, defaultBannedWords, cfg.BannedWords)
	assert.NotEmpty(t, cfg.Patterns["pii"])
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter_config.yaml")
	content := `
banned_words:
  - alpha
  - beta
patterns:
  toxic:
    - '(?i)\bfoo\b'
whitelist:
  - beta
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.BannedWords)
	assert.Equal(t, []string{"beta"}, cfg.Whitelist)
	assert.Len(t, cfg.Patterns["toxic"], 1)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("banned_words: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadProfanityList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banned_words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Damn\n\n  hell \n"), 0o600))

	words, err := LoadProfanityList(path)
	require.NoError(t, err)
	assert.Len(t, words, 2)
	assert.True(t, words["damn"], "words are lowercased")
	assert.True(t, words["hell"])
}

func TestLoadProfanityList_MissingFileUsesDefaults(t *testing.T) {
	words, err := LoadProfanityList(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.True(t, words["damn"])
}

func TestNewKeywordFilter_SkipsBadPatterns(t *testing.T) {
	cfg := &Config{Patterns: map[string][]string{
		"toxic": {`(?i)\bok\b`, `([unclosed`},
	}}
	kf := NewKeywordFilter(cfg)
	assert.Len(t, kf.toxicPatterns, 1, "invalid pattern skipped, valid kept")
}
