// Package corpus turns labeled URL datasets into token sentence files,
// one URL per line, the input format for embedding training.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kljensen/snowball"
	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

// Config controls how URLs become sentences.
type Config struct {
	// Expansions enables abbreviation expansion when non nil.
	Expansions map[string]string
	// ReversePath puts the most specific path tokens first.
	ReversePath bool
	// Stem reduces tokens to their English stems, shrinking the
	// vocabulary the embedding has to cover.
	Stem bool
	// MinTokenLen drops tokens shorter than this after stemming.
	// Zero keeps everything.
	MinTokenLen int
}

// Builder produces token sentences from records.
type Builder struct {
	tok *urltoken.Tokenizer
	cfg Config
}

// NewBuilder returns a Builder for the given config.
func NewBuilder(cfg Config) *Builder {
	var opts []urltoken.Option
	if cfg.Expansions != nil {
		opts = append(opts, urltoken.WithExpansions(cfg.Expansions))
	}
	if cfg.ReversePath {
		opts = append(opts, urltoken.WithReversedPath())
	}
	return &Builder{tok: urltoken.NewTokenizer(opts...), cfg: cfg}
}

// Sentence tokenizes one URL into its flattened token list.
func (b *Builder) Sentence(url string) ([]string, error) {
	data, err := b.tok.Tokenize(url)
	if err != nil {
		return nil, err
	}
	tokens := urltoken.Flatten(data)

	out := tokens[:0]
	for _, tok := range tokens {
		if b.cfg.Stem {
			if stemmed, err := snowball.Stem(tok, "english", true); err == nil {
				tok = stemmed
			}
		}
		if len(tok) < b.cfg.MinTokenLen {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// Sentences tokenizes every record, skipping URLs the tokenizer
// rejects.
func (b *Builder) Sentences(records []dataset.Record) [][]string {
	sentences := make([][]string, 0, len(records))
	skipped := 0
	for _, r := range records {
		sentence, err := b.Sentence(r.URL)
		if err != nil {
			skipped++
			continue
		}
		if len(sentence) == 0 {
			continue
		}
		sentences = append(sentences, sentence)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped untokenizable URLs while building corpus")
	}
	return sentences
}

// Write streams the corpus as one space joined sentence per line and
// returns how many sentences were written.
func (b *Builder) Write(w io.Writer, records []dataset.Record) (int, error) {
	bw := bufio.NewWriter(w)
	sentences := b.Sentences(records)
	for _, sentence := range sentences {
		if _, err := bw.WriteString(strings.Join(sentence, " ")); err != nil {
			return 0, fmt.Errorf("failed to write sentence: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return 0, fmt.Errorf("failed to write sentence: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush corpus: %w", err)
	}
	return len(sentences), nil
}

// WriteFile writes the corpus to path.
func (b *Builder) WriteFile(path string, records []dataset.Record) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create corpus file: %w", err)
	}
	n, err := b.Write(f, records)
	if err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close corpus file %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("sentences", n).Msg("Wrote corpus file")
	return n, nil
}

// ReadSentences loads a corpus file back into token lists, the inverse
// of Write.
func ReadSentences(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	var sentences [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			sentences = append(sentences, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus file %s: %w", path, err)
	}
	return sentences, nil
}
