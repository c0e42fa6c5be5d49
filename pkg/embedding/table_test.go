package embedding

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReader(t *testing.T) {
	table, err := LoadReader(strings.NewReader("apple 1.0 2.0\nbanana 3.0 4.0\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Dim())
	assert.Equal(t, 2, table.Len())

	vec, ok := table.Lookup("apple")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, vec)

	_, ok = table.Lookup("cherry")
	assert.False(t, ok)
	assert.True(t, table.Contains("banana"))
	assert.Equal(t, []float64{2, 3}, table.Average())
}

func TestLoadReaderSkipsCountHeader(t *testing.T) {
	table, err := LoadReader(strings.NewReader("2 3\na 1 0 0\nb 0 1 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Dim())
	assert.Equal(t, 2, table.Len())
	assert.False(t, table.Contains("2"))
}

func TestLoadReaderOneDimensionalVectors(t *testing.T) {
	// Two fields only counts as a header when both are integers.
	table, err := LoadReader(strings.NewReader("word 5\nother 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, table.Dim())
	assert.Equal(t, 2, table.Len())
	vec, ok := table.Lookup("word")
	require.True(t, ok)
	assert.Equal(t, []float64{5}, vec)
}

func TestLoadReaderKeyPrefix(t *testing.T) {
	input := "/c/en/apple 1 2\n/c/de/apfel 3 4\n/c/en/pear 5 6\n"
	table, err := LoadReader(strings.NewReader(input), WithKeyPrefix("/c/en/"))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Contains("apple"))
	assert.True(t, table.Contains("pear"))
	assert.False(t, table.Contains("apfel"))
	assert.Equal(t, []float64{3, 4}, table.Average())
}

func TestLoadReaderMaxWords(t *testing.T) {
	input := "a 1\nb 2\nc 3\n"
	table, err := LoadReader(strings.NewReader(input), WithMaxWords(2))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Contains("a"))
	assert.True(t, table.Contains("b"))
	assert.False(t, table.Contains("c"))
}

func TestLoadReaderRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "inconsistent dimensions", input: "a 1 2\nb 3\n"},
		{name: "non numeric component", input: "a 1 2\nb x y\n"},
		{name: "empty input", input: ""},
		{name: "word without vector", input: "alone\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte("x 1 2 3\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Dim())

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	table, err := LoadReader(strings.NewReader("up 0.5 -1.25\ndown -0.5 1.25\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Save(&buf))

	reloaded, err := LoadReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Dim(), reloaded.Dim())
	assert.Equal(t, table.Len(), reloaded.Len())
	vec, ok := reloaded.Lookup("up")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.5, -1.25}, vec, 1e-9)
}

func TestLoadNamed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.txt"), []byte("hi 1 2\n"), 0o644))

	table, err := LoadNamed("sample", dir)
	require.NoError(t, err)
	assert.True(t, table.Contains("hi"))

	_, err = LoadNamed("made-up", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample")
}

func TestSourceNames(t *testing.T) {
	names := SourceNames()
	assert.Contains(t, names, "glove")
	assert.Contains(t, names, "conceptnet")
	assert.IsIncreasing(t, names)
}

func TestHashedTable(t *testing.T) {
	h := NewHashedTable(16, 7)
	assert.Equal(t, 16, h.Dim())

	first, ok := h.Lookup("token")
	require.True(t, ok)
	second, _ := h.Lookup("token")
	assert.Equal(t, first, second)

	other, _ := h.Lookup("different")
	assert.NotEqual(t, first, other)

	var norm float64
	for _, v := range first {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)

	assert.Equal(t, make([]float64, 16), h.Average())
}

func TestHashedTableSeedChangesVectors(t *testing.T) {
	a, _ := NewHashedTable(8, 1).Lookup("word")
	b, _ := NewHashedTable(8, 2).Lookup("word")
	assert.NotEqual(t, a, b)
}
