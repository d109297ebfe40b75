package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modflow/modflow/pkg/models"
)

func TestParseVerdict_StrictJSON(t *testing.T) {
	v := ParseVerdict(`{"decision": "Toxic", "confidence": 0.92, "reasoning": "insult"}`)

	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.92, v.Confidence)
	assert.Equal(t, "insult", v.Reasoning)
}

func TestParseVerdict_StrictJSONWithMissingFields(t *testing.T) {
	v := ParseVerdict(`{"decision": "Toxic"}`)

	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.5, v.Confidence, "missing confidence defaults")
	assert.Empty(t, v.Reasoning)
}

func TestParseVerdict_JSONCodeFence(t *testing.T) {
	content := "Here is my analysis:\n```json\n{\"decision\": \"Toxic\", \"confidence\": 0.85, \"reasoning\": \"threat\"}\n```\nLet me know if you need more."

	v := ParseVerdict(content)
	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.85, v.Confidence)
}

func TestParseVerdict_GenericCodeFence(t *testing.T) {
	content := "```\n{\"decision\": \"Non-Toxic\", \"confidence\": 0.9}\n```"

	v := ParseVerdict(content)
	assert.Equal(t, models.DecisionNonToxic, v.Decision)
	assert.Equal(t, 0.9, v.Confidence)
}

func TestParseVerdict_EmbeddedObject(t *testing.T) {
	content := `After reviewing the message I conclude {"decision": "Toxic", "confidence": 0.8, "reasoning": "slur"} which is final.`

	v := ParseVerdict(content)
	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.8, v.Confidence)
}

func TestParseVerdict_KeywordHeuristicToxic(t *testing.T) {
	v := ParseVerdict("The message is a clear personal attack on another user.")

	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.7, v.Confidence)
	assert.Equal(t, "Text analysis - toxic indicators found", v.Reasoning)
}

func TestParseVerdict_KeywordHeuristicNonToxic(t *testing.T) {
	v := ParseVerdict("This looks like a friendly greeting between colleagues.")

	assert.Equal(t, models.DecisionNonToxic, v.Decision)
	assert.Equal(t, 0.7, v.Confidence)
	assert.Equal(t, "Text analysis - no toxic indicators", v.Reasoning)
}

func TestParseVerdict_Undecidable(t *testing.T) {
	v := ParseVerdict("I have nothing useful to say about the weather today.")

	assert.Equal(t, models.DecisionNonToxic, v.Decision)
	assert.Equal(t, 0.5, v.Confidence)
	assert.Equal(t, "Unable to determine from LLM response", v.Reasoning)
}

func TestParseVerdict_MalformedFencedFallsThrough(t *testing.T) {
	// The fenced block is unparseable, but the prose carries a signal.
	content := "```json\n{\"decision\": broken}\n```\nOverall this is harassment."

	v := ParseVerdict(content)
	assert.Equal(t, models.DecisionToxic, v.Decision)
	assert.Equal(t, 0.7, v.Confidence)
}
