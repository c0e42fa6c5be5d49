package featurize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordlys-ml/urlclass/pkg/embedding"
	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

func sampleTable(t *testing.T) *embedding.Table {
	t.Helper()
	table, err := embedding.Load("testdata/sample.txt")
	require.NoError(t, err)
	return table
}

func TestHandPickedFeatures(t *testing.T) {
	f := New(sampleTable(t))

	tests := []struct {
		name     string
		url      string
		expected []float64
	}{
		{
			name:     "bare http domain",
			url:      "http://test.com",
			expected: []float64{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3, 8, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "https with suspicious tld",
			url:      "https://test-a-domain.xyz",
			expected: []float64{1, 3, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 5, 17, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "www lookalike with url in query",
			url:      "https://wwws.test.com/some/LONG?http://domain",
			expected: []float64{1, 1, 1, 0, 1, 2, 0, 0, 0, 0, 0, 0, 8, 13, 10, 13, 0, 4, 0, 1},
		},
		{
			name:     "ip host with numbered args",
			url:      "http://12.34.23.66/path?arg1=val11;arg2=val22",
			expected: []float64{0, 1, 2, 0, 0, 1, 0, 4, 0, 6, 10, 0, 12, 11, 5, 21, 0, 0, 1, 0},
		},
		{
			name:     "at sign path with escaped backslash",
			url:      "http://www.geocities.com/@web.net?BET%5Cpage.html",
			expected: []float64{0, 2, 1, 1, 0, 2, 0, 0, 0, 0, 0, 1, 10, 17, 9, 13, 2, 3, 0, 1},
		},
		{
			name:     "numeric sub domains and tilde user path",
			url:      "http://www2.117.ne.jp/~mb1996ax/notes.html",
			expected: []float64{0, 1, 2, 0, 1, 7, 0, 4, 4, 0, 8, 0, 12, 14, 21, 0, 1, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feat, err := f.Featurize(tt.url)
			require.NoError(t, err)
			require.Len(t, feat.Vector, NumHandPicked)
			assert.Equal(t, tt.expected, feat.Vector)
		})
	}
}

func TestFeatureNamesMatchVectorLength(t *testing.T) {
	assert.Len(t, FeatureNames, NumHandPicked)
	for _, name := range FeatureNames {
		assert.NotEmpty(t, name)
	}
}

func TestMatrixLayout(t *testing.T) {
	f := New(sampleTable(t), WithMaxLens(1, 2, 1, 2))

	feat, err := f.Featurize("http://unk.test.com?arg=val")
	require.NoError(t, err)

	require.Len(t, feat.Matrix, 7)

	avg := []float64{-4.5, 4.5}
	zero := []float64{0, 0}

	// Sub domain slot: "unk" is out of vocabulary, so the average.
	assert.Equal(t, avg, feat.Matrix[0])
	// Main domain slots: "test" then zero padding.
	assert.Equal(t, []float64{-2, 2}, feat.Matrix[1])
	assert.Equal(t, zero, feat.Matrix[2])
	// TLD slot.
	assert.Equal(t, []float64{-3, 3}, feat.Matrix[3])
	// Path slot: empty path pads with zeros.
	assert.Equal(t, zero, feat.Matrix[4])
	// Argument slots: param then value.
	assert.Equal(t, []float64{-7, 7}, feat.Matrix[5])
	assert.Equal(t, []float64{-8, 8}, feat.Matrix[6])
}

func TestMatrixShape(t *testing.T) {
	table := sampleTable(t)

	f := New(table)
	assert.Equal(t, 31, f.NumRows())

	feat, err := f.Featurize("http://test.com/some/page?arg=val")
	require.NoError(t, err)
	require.Len(t, feat.Matrix, 31)
	for _, row := range feat.Matrix {
		assert.Len(t, row, table.Dim())
	}

	f.SetMaxLens(1, 1, 1, 1)
	assert.Equal(t, 5, f.NumRows())
	feat, err = f.Featurize("http://test.com/some/page?arg=val")
	require.NoError(t, err)
	assert.Len(t, feat.Matrix, 5)
}

func TestMatrixTruncatesOverflowingTokens(t *testing.T) {
	f := New(sampleTable(t), WithMaxLens(1, 1, 1, 1))

	// Path has two tokens but only one slot.
	feat, err := f.Featurize("http://test.com/some/page")
	require.NoError(t, err)

	// Row order: sub, main, tld, path, args.
	assert.Equal(t, []float64{-4, 4}, feat.Matrix[3])
}

func TestFeaturizeRejectsMalformedURL(t *testing.T) {
	f := New(sampleTable(t))

	_, err := f.Featurize("banana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to featurize")
}

func TestFeaturizeAllSubstitutesPlaceholders(t *testing.T) {
	f := New(sampleTable(t), WithMaxLens(1, 1, 1, 1))

	feats := f.FeaturizeAll([]string{"http://test.com", "banana", "http://test.com/some"})
	require.Len(t, feats, 3)

	assert.Equal(t, "banana", feats[1].URL)
	assert.Equal(t, make([]float64, NumHandPicked), feats[1].Vector)
	require.Len(t, feats[1].Matrix, 5)
	for _, row := range feats[1].Matrix {
		assert.Equal(t, []float64{0, 0}, row)
	}

	assert.NotEqual(t, make([]float64, NumHandPicked), feats[0].Vector)
}

func TestFeaturizeWithExpandingTokenizer(t *testing.T) {
	tok := urltoken.NewTokenizer(urltoken.WithExpansions(urltoken.DefaultExpansions()))
	f := New(sampleTable(t), WithTokenizer(tok))

	feat, err := f.Featurize("http://cs.test.com")
	require.NoError(t, err)

	// "cs" expands to two sub domain tokens.
	assert.Equal(t, float64(2), feat.Vector[2])
}

func TestFeaturizeWithHashedTable(t *testing.T) {
	f := New(embedding.NewHashedTable(4, 1), WithMaxLens(1, 1, 1, 1))

	feat, err := f.Featurize("http://test.com")
	require.NoError(t, err)
	require.Len(t, feat.Matrix, 5)
	assert.Len(t, feat.Matrix[1], 4)
	// Hashed tables never miss, so the main domain row is non zero.
	assert.NotEqual(t, []float64{0, 0, 0, 0}, feat.Matrix[1])
}
func TestCombinedVector(t *testing.T) {
	f := New(sampleTable(t), WithMaxLens(1, 1, 1, 1))

	feat, err := f.Featurize("http://test.com")
	require.NoError(t, err)

	combined := feat.Combined()
	require.Len(t, combined, NumHandPicked+2)
	assert.Equal(t, feat.Vector, combined[:NumHandPicked])

	// Rows: zero sub, "test", "com", zero path, zero arg.
	assert.InDelta(t, (-2.0-3.0)/5, combined[NumHandPicked], 1e-9)
	assert.InDelta(t, (2.0+3.0)/5, combined[NumHandPicked+1], 1e-9)
}
