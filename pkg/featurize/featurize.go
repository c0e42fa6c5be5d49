// Package featurize turns URLs into numeric features for the baseline
// classifiers: a fixed length vector of hand picked lexical signals and
// a token embedding matrix with one row per token slot.
package featurize

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

// Embedding is the vector source consumed by the featurizer. Both the
// file backed and the hashed tables satisfy it.
type Embedding interface {
	Dim() int
	Lookup(word string) ([]float64, bool)
	Average() []float64
}

// Features holds everything extracted from one URL.
type Features struct {
	URL    string
	Vector []float64
	Matrix [][]float64
}

// Featurizer extracts features using a tokenizer and an embedding
// table. Token slots per URL part are capped, with missing slots zero
// padded and extra tokens dropped, so every matrix has the same shape.
type Featurizer struct {
	tok     *urltoken.Tokenizer
	emb     Embedding
	subMax  int
	mainMax int
	pathMax int
	argMax  int
}

// Option configures a Featurizer.
type Option func(*Featurizer)

// WithTokenizer replaces the default tokenizer, e.g. to enable
// abbreviation expansion before embedding lookups.
func WithTokenizer(tok *urltoken.Tokenizer) Option {
	return func(f *Featurizer) { f.tok = tok }
}

// WithMaxLens sets the token slot counts for sub domain, main domain,
// path and argument tokens.
func WithMaxLens(sub, main, path, arg int) Option {
	return func(f *Featurizer) { f.SetMaxLens(sub, main, path, arg) }
}

// New returns a Featurizer with the default slot sizes of 5 sub
// domain, 5 main domain, 10 path and 10 argument tokens.
func New(emb Embedding, opts ...Option) *Featurizer {
	f := &Featurizer{
		tok:     urltoken.NewTokenizer(),
		emb:     emb,
		subMax:  5,
		mainMax: 5,
		pathMax: 10,
		argMax:  10,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetMaxLens changes the token slot counts, which changes NumRows.
func (f *Featurizer) SetMaxLens(sub, main, path, arg int) {
	f.subMax, f.mainMax, f.pathMax, f.argMax = sub, main, path, arg
}

// NumRows returns the matrix row count: one slot per sub domain, main
// domain, path and argument token plus a single TLD row.
func (f *Featurizer) NumRows() int {
	return f.subMax + f.mainMax + 1 + f.pathMax + f.argMax
}

// Featurize extracts features from one URL.
func (f *Featurizer) Featurize(url string) (Features, error) {
	data, err := f.tok.Tokenize(url)
	if err != nil {
		return Features{}, fmt.Errorf("failed to featurize url: %w", err)
	}
	return Features{
		URL:    url,
		Vector: handPicked(url, data),
		Matrix: f.matrix(data),
	}, nil
}

// FeaturizeAll extracts features from every URL, substituting zero
// features for URLs the tokenizer rejects so that row indexes keep
// lining up with the input.
func (f *Featurizer) FeaturizeAll(urls []string) []Features {
	out := make([]Features, 0, len(urls))
	for _, url := range urls {
		feat, err := f.Featurize(url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Substituting zero features for malformed URL")
			feat = f.placeholder(url)
		}
		out = append(out, feat)
	}
	return out
}

// Combined returns the flat classifier input: the hand picked vector
// followed by the column-wise mean of the word matrix, so one URL
// becomes NumHandPicked+dim values regardless of token count.
func (f Features) Combined() []float64 {
	if len(f.Matrix) == 0 {
		return append([]float64{}, f.Vector...)
	}
	dim := len(f.Matrix[0])
	out := make([]float64, 0, len(f.Vector)+dim)
	out = append(out, f.Vector...)
	pooled := make([]float64, dim)
	for _, row := range f.Matrix {
		for d, v := range row {
			pooled[d] += v
		}
	}
	for d := range pooled {
		pooled[d] /= float64(len(f.Matrix))
	}
	return append(out, pooled...)
}

func (f *Featurizer) placeholder(url string) Features {
	matrix := make([][]float64, f.NumRows())
	for i := range matrix {
		matrix[i] = make([]float64, f.emb.Dim())
	}
	return Features{
		URL:    url,
		Vector: make([]float64, NumHandPicked),
		Matrix: matrix,
	}
}

func (f *Featurizer) matrix(data urltoken.URLData) [][]float64 {
	rows := make([][]float64, 0, f.NumRows())
	rows = f.appendRows(rows, data.Domains.Sub, f.subMax)
	rows = f.appendRows(rows, data.Domains.Main, f.mainMax)
	rows = f.appendRows(rows, []string{data.Domains.TLD}, 1)
	rows = f.appendRows(rows, data.Path, f.pathMax)
	rows = f.appendRows(rows, flattenArgs(data.Args), f.argMax)
	return rows
}

// appendRows embeds up to max tokens, padding the remaining slots with
// zero rows. Unknown tokens fall back to the table's average vector.
func (f *Featurizer) appendRows(rows [][]float64, tokens []string, max int) [][]float64 {
	for i := 0; i < max; i++ {
		if i >= len(tokens) {
			rows = append(rows, make([]float64, f.emb.Dim()))
			continue
		}
		vec, ok := f.emb.Lookup(tokens[i])
		if !ok {
			vec = f.emb.Average()
		}
		row := make([]float64, len(vec))
		copy(row, vec)
		rows = append(rows, row)
	}
	return rows
}

func flattenArgs(args []urltoken.ParamValPair) []string {
	var tokens []string
	for _, pair := range args {
		tokens = append(tokens, pair.Param...)
		tokens = append(tokens, pair.Value...)
	}
	return tokens
}
