package urltoken

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTokens(t *testing.T) {
	table := DefaultExpansions()

	tests := []struct {
		name     string
		tokens   []string
		expected []string
	}{
		{
			name:     "single abbreviation",
			tokens:   []string{"cs"},
			expected: []string{"computer", "science"},
		},
		{
			name:     "abbreviation among plain tokens",
			tokens:   []string{"the", "nlp", "page"},
			expected: []string{"the", "natural", "language", "processing", "page"},
		},
		{
			name:     "unknown tokens pass through",
			tokens:   []string{"banana", "42"},
			expected: []string{"banana", "42"},
		},
		{
			name:   "empty input",
			tokens: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandTokens(tt.tokens, table)
			if tt.expected == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestDefaultExpansions(t *testing.T) {
	table := DefaultExpansions()

	expected := map[string]string{
		"cs":  "computer science",
		"nos": "network operating system",
		"nlp": "natural language processing",
		"www": "world wide web",
		"msu": "michigan state university",
		"ysi": "young scots for independence",
		"sl":  "sierra leone",
	}
	for token, phrase := range expected {
		assert.Equal(t, phrase, table[token], "expansion for %q", token)
	}
}

func TestLoadExpansionsFile(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "expansions.csv")
		content := "abc,a big cat\nXYZ,Example Phrase\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		table, err := LoadExpansionsFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a big cat", table["abc"])
		assert.Equal(t, "example phrase", table["xyz"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadExpansionsFile(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("wrong column count", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("only-one-column\n"), 0o644))

		_, err := LoadExpansionsFile(path)
		assert.Error(t, err)
	})
}
