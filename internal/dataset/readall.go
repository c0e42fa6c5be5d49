package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Layout locates the raw dataset files under one data directory. The
// files are downloaded manually; Sample switches every path to the
// small fixture variant used while iterating on feature code.
type Layout struct {
	Dir    string
	Sample bool
}

// Path returns where a dataset lives under the layout. DMOZ and
// phishing are single CSV files, WebKB is a directory tree.
func (l Layout) Path(format Format) string {
	suffix := ""
	if l.Sample {
		suffix = "_sample"
	}
	switch format {
	case FormatDMOZ:
		return filepath.Join(l.Dir, "dmoz", "urls"+suffix+".csv")
	case FormatWebKB:
		return filepath.Join(l.Dir, "webkb"+suffix)
	case FormatPhishing:
		return filepath.Join(l.Dir, "phishing", "urls"+suffix+".csv")
	}
	return filepath.Join(l.Dir, string(format))
}

// ReadAll reads the given datasets (all known formats when none are
// named), drops records whose URL the tokenizer rejects, and returns
// the combined records with per-source counts of the kept ones.
func ReadAll(layout Layout, formats ...Format) ([]Record, map[string]int, error) {
	if len(formats) == 0 {
		formats = []Format{FormatDMOZ, FormatWebKB, FormatPhishing}
	}

	var all []Record
	counts := make(map[string]int, len(formats))
	for _, format := range formats {
		records, err := Read(format, layout.Path(format))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s dataset: %w", format, err)
		}
		kept, dropped := FilterValid(records)
		if dropped > 0 {
			log.Warn().
				Str("dataset", string(format)).
				Int("dropped", dropped).
				Int("kept", len(kept)).
				Msg("Dropped untokenizable records")
		}
		counts[string(format)] = len(kept)
		all = append(all, kept...)
	}
	return all, counts, nil
}
