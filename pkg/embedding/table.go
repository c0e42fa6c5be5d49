// Package embedding loads and trains word vector tables used to turn
// URL tokens into numeric matrices. Tables are plain text files with
// one "word v1 v2 ... vd" line per word, the format shared by GloVe,
// ConceptNet Numberbatch and word2vec text exports.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Table is an in-memory word vector matrix. All vectors share one
// dimension and the table keeps a running average vector used as the
// fallback for out of vocabulary tokens.
type Table struct {
	dim     int
	vectors map[string][]float64
	avg     []float64
}

type loadOptions struct {
	keyPrefix string
	maxWords  int
}

// LoadOption adjusts how an embedding file is read.
type LoadOption func(*loadOptions)

// WithKeyPrefix keeps only words carrying the given prefix and strips
// it, e.g. "/c/en/" for multilingual ConceptNet Numberbatch files.
func WithKeyPrefix(prefix string) LoadOption {
	return func(o *loadOptions) { o.keyPrefix = prefix }
}

// WithMaxWords stops reading after n vectors. The files are ordered by
// frequency, so a cap keeps the most useful part of the vocabulary.
func WithMaxWords(n int) LoadOption {
	return func(o *loadOptions) { o.maxWords = n }
}

// Load reads an embedding table from a text file.
func Load(path string, opts ...LoadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding file: %w", err)
	}
	defer f.Close()

	table, err := LoadReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding file %s: %w", path, err)
	}
	log.Debug().
		Str("path", path).
		Int("words", table.Len()).
		Int("dim", table.Dim()).
		Msg("Loaded embedding table")
	return table, nil
}

// LoadReader reads an embedding table in text format. A leading
// "<count> <dim>" header line, as written by word2vec text exports,
// is detected and skipped.
func LoadReader(r io.Reader, opts ...LoadOption) (*Table, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table{vectors: make(map[string][]float64)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && isCountHeader(fields) {
			continue
		}
		word := fields[0]
		if o.keyPrefix != "" {
			if !strings.HasPrefix(word, o.keyPrefix) {
				continue
			}
			word = strings.TrimPrefix(word, o.keyPrefix)
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector components for word %q", line, word)
		}
		if t.dim == 0 {
			t.dim = len(fields) - 1
			t.avg = make([]float64, t.dim)
		} else if len(fields)-1 != t.dim {
			return nil, fmt.Errorf("line %d: expected %d components, got %d", line, t.dim, len(fields)-1)
		}
		if _, dup := t.vectors[word]; dup {
			continue
		}
		vec := make([]float64, t.dim)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad component %q: %w", line, field, err)
			}
			vec[i] = v
		}
		t.vectors[word] = vec
		floats.Add(t.avg, vec)
		if o.maxWords > 0 && len(t.vectors) >= o.maxWords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embedding data: %w", err)
	}
	if len(t.vectors) == 0 {
		return nil, fmt.Errorf("no vectors found")
	}
	floats.Scale(1/float64(len(t.vectors)), t.avg)
	return t, nil
}

// isCountHeader reports whether the first line is a "<count> <dim>"
// word2vec style header rather than a one dimensional vector.
func isCountHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

// Dim returns the vector dimension.
func (t *Table) Dim() int { return t.dim }

// Len returns the vocabulary size.
func (t *Table) Len() int { return len(t.vectors) }

// Lookup returns the vector for a word. The returned slice is shared;
// callers must not modify it.
func (t *Table) Lookup(word string) ([]float64, bool) {
	vec, ok := t.vectors[word]
	return vec, ok
}

// Contains reports whether the word is in the vocabulary.
func (t *Table) Contains(word string) bool {
	_, ok := t.vectors[word]
	return ok
}

// Average returns the mean vector over the whole vocabulary, used as
// the stand-in for unknown tokens. The returned slice is shared.
func (t *Table) Average() []float64 { return t.avg }

// Words returns the vocabulary in unspecified order.
func (t *Table) Words() []string {
	words := make([]string, 0, len(t.vectors))
	for w := range t.vectors {
		words = append(words, w)
	}
	return words
}

// Save writes the table in word2vec text format, header line included,
// so the output can be loaded again with Load.
func (t *Table) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", len(t.vectors), t.dim)
	for word, vec := range t.vectors {
		bw.WriteString(word)
		for _, v := range vec {
			fmt.Fprintf(bw, " %.6f", v)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SaveFile writes the table to path, creating or truncating it.
func (t *Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create embedding file: %w", err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write embedding file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close embedding file %s: %w", path, err)
	}
	return nil
}
