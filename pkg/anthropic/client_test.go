package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", ExtractText(resp))
	assert.Equal(t, "", ExtractText(nil))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"value": "test"}`,
			expected: `{"value": "test"}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"value\": \"test\"}\n```",
			expected: `{"value": "test"}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"value\": \"test\"}\n```",
			expected: `{"value": "test"}`,
		},
		{
			name:     "prose around object",
			input:    "Here is the mapping:\n{\"a\": \"B\"}\nHope that helps.",
			expected: `{"a": "B"}`,
		},
		{
			name:     "no object",
			input:    "sorry, cannot help",
			expected: "sorry, cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSON(tt.input))
		})
	}
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.0, u.EstimateCost("claude-sonnet-4-20250514"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}
