// Package dataset reads the labeled URL collections used for training
// and evaluation. Every reader normalizes its source into the same
// Record shape so downstream stages never care where a URL came from.
package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

// Record is one labeled URL. University is only set by collections
// that group pages per institution.
type Record struct {
	URL        string `json:"url"`
	Label      string `json:"label"`
	Source     string `json:"source"`
	University string `json:"university,omitempty"`
}

// Format names a supported dataset layout.
type Format string

const (
	FormatDMOZ     Format = "dmoz"
	FormatWebKB    Format = "webkb"
	FormatPhishing Format = "phishing"
)

// Formats returns the supported format names sorted alphabetically.
func Formats() []string {
	names := []string{string(FormatDMOZ), string(FormatWebKB), string(FormatPhishing)}
	sort.Strings(names)
	return names
}

// Read loads a dataset with the reader matching its format. For DMOZ
// and phishing collections path is a CSV file, for WebKB it is the
// root of the per label directory tree.
func Read(format Format, path string) ([]Record, error) {
	switch format {
	case FormatDMOZ:
		return ReadDMOZ(path)
	case FormatWebKB:
		return ReadWebKB(path)
	case FormatPhishing:
		return ReadPhishing(path)
	}
	return nil, fmt.Errorf("unknown dataset format %q, valid formats are %s",
		format, strings.Join(Formats(), ", "))
}

// URLs returns the URL column.
func URLs(records []Record) []string {
	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.URL
	}
	return urls
}

// Labels returns the distinct labels sorted alphabetically.
func Labels(records []Record) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, r := range records {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}
	sort.Strings(labels)
	return labels
}

// CountByLabel returns the number of records per label.
func CountByLabel(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Label]++
	}
	return counts
}

// Shuffle permutes records in place using the given seed, so the same
// seed always yields the same order.
func Shuffle(records []Record, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

// Split cuts records into a training and a test part, with trainFrac
// of them (rounded down) in the training part. Shuffle first when the
// source is ordered by label.
func Split(records []Record, trainFrac float64) (train, test []Record, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("train fraction must be inside (0, 1), got %g", trainFrac)
	}
	cut := int(float64(len(records)) * trainFrac)
	return records[:cut], records[cut:], nil
}

// ValidationReport summarizes a tokenization pass over a dataset.
type ValidationReport struct {
	Valid    int
	Rejected int
	// BadSamples holds up to ten of the rejected URLs for logs.
	BadSamples []string
}

const maxBadSamples = 10

// Validate runs every record through the tokenizer and reports how
// many would be dropped by the feature stages.
func Validate(records []Record) ValidationReport {
	tok := urltoken.NewTokenizer()
	var report ValidationReport
	for _, r := range records {
		if _, err := tok.Tokenize(r.URL); err != nil {
			report.Rejected++
			if len(report.BadSamples) < maxBadSamples {
				report.BadSamples = append(report.BadSamples, r.URL)
			}
			continue
		}
		report.Valid++
	}
	return report
}

// FilterValid drops records the tokenizer rejects and returns the
// clean remainder along with the number dropped.
func FilterValid(records []Record) ([]Record, int) {
	tok := urltoken.NewTokenizer()
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if _, err := tok.Tokenize(r.URL); err != nil {
			log.Debug().Str("url", r.URL).Msg("Dropping untokenizable record")
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}
