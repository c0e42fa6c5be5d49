package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadPhishing reads a phishing feed CSV with a "url,label" header.
// Labels are kept verbatim; the common feeds use "bad" and "good".
func ReadPhishing(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phishing file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read phishing header: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "url") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "label") {
		return nil, fmt.Errorf("phishing file %s: expected url,label header, got %s,%s", path, header[0], header[1])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse phishing file %s: %w", path, err)
		}
		url := strings.TrimSpace(row[0])
		label := strings.TrimSpace(row[1])
		if url == "" || label == "" {
			continue
		}
		records = append(records, Record{URL: url, Label: label, Source: string(FormatPhishing)})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("phishing file %s has no usable rows", path)
	}

	log.Debug().Str("path", path).Int("records", len(records)).Msg("Loaded phishing dataset")
	return records, nil
}
