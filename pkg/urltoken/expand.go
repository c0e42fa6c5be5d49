package urltoken

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	_ "embed"
)

//go:embed expansions.csv
var embeddedExpansions string

var (
	defaultExpansionsOnce sync.Once
	defaultExpansions     map[string]string
)

// DefaultExpansions returns the embedded abbreviation table, mapping
// short tokens like "cs" to phrases like "computer science".
func DefaultExpansions() map[string]string {
	defaultExpansionsOnce.Do(func() {
		table, err := parseExpansions(strings.NewReader(embeddedExpansions))
		if err != nil {
			panic(fmt.Sprintf("embedded expansion table is broken: %v", err))
		}
		defaultExpansions = table
	})
	return defaultExpansions
}

// LoadExpansionsFile reads an abbreviation table from a two column CSV
// of token,expansion rows.
func LoadExpansionsFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open expansion table: %w", err)
	}
	defer f.Close()
	table, err := parseExpansions(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expansion table %s: %w", path, err)
	}
	return table, nil
}

func parseExpansions(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	table := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		token := strings.ToLower(strings.TrimSpace(record[0]))
		phrase := strings.ToLower(strings.TrimSpace(record[1]))
		if token == "" || phrase == "" {
			continue
		}
		table[token] = phrase
	}
	return table, nil
}

// ExpandTokens replaces abbreviations with their phrases. Multi word
// phrases contribute one token per word; unknown tokens pass through.
func ExpandTokens(tokens []string, table map[string]string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if phrase, ok := table[tok]; ok {
			out = append(out, strings.Fields(phrase)...)
		} else {
			out = append(out, tok)
		}
	}
	return out
}
