package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "object in prose",
			input: "Sure, here you go:\n{\"a\": 1}\nHope that helps!",
			want:  `{"a": 1}`,
		},
		{
			name:  "object in code fence",
			input: "```json\n{\"a\": {\"b\": 2}}\n```",
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "array",
			input: "Here are the questions: [1, 2, 3] done",
			want:  `[1, 2, 3]`,
		},
		{
			name:  "braces inside strings are ignored",
			input: `{"text": "use { and } freely"}`,
			want:  `{"text": "use { and } freely"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"text": "she said \"hi}\" loudly"}`,
			want:  `{"text": "she said \"hi}\" loudly"}`,
		},
		{
			name:  "first balanced payload wins",
			input: `{"a": 1} {"b": 2}`,
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no JSON at all", func(t *testing.T) {
		_, err := ExtractJSON("sorry, I cannot answer that")
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("unclosed object", func(t *testing.T) {
		_, err := ExtractJSON(`{"a": 1`)
		assert.ErrorIs(t, err, ErrNoJSON)
	})
}
