package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `{"recommendation":"MAYBE"}`,
			want:  `{"recommendation":"MAYBE"}`,
		},
		{
			name:  "code fenced",
			input: "```json\n{\"fairValueLow\": 1000}\n```",
			want:  `{"fairValueLow": 1000}`,
		},
		{
			name:  "prose around object",
			input: "Here is the valuation: {\"a\": {\"b\": \"}\"}} hope it helps",
			want:  `{"a": {"b": "}"}}`,
		},
		{
			name:  "think tags stripped",
			input: "<think>{not json}</think>\n{\"ok\": true}",
			want:  `{"ok": true}`,
		},
		{
			name:  "array",
			input: `result: ["a", "b"]`,
			want:  `["a", "b"]`,
		},
		{
			name:    "no json",
			input:   "I cannot value this vehicle.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			input:   `{"a": 1`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Price int    `json:"price"`
		Title string `json:"title"`
	}

	got, err := ParseJSON[payload]("```json\n{\"price\": 28990, \"title\": \"2020 Toyota Camry\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, payload{Price: 28990, Title: "2020 Toyota Camry"}, got)

	_, err = ParseJSON[payload](`{"price": "not a number"}`)
	assert.Error(t, err)
}
