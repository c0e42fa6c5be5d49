package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadDMOZ reads a DMOZ topic export: a headerless CSV with one
// "index,url,label" row per page.
func ReadDMOZ(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dmoz file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	reader.LazyQuotes = true

	var records []Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse dmoz file %s: %w", path, err)
		}
		line++
		url := strings.TrimSpace(row[1])
		label := strings.TrimSpace(row[2])
		if url == "" || label == "" {
			log.Debug().Int("line", line).Msg("Skipping dmoz row without url or label")
			continue
		}
		records = append(records, Record{URL: url, Label: label, Source: string(FormatDMOZ)})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dmoz file %s has no usable rows", path)
	}

	log.Debug().Str("path", path).Int("records", len(records)).Msg("Loaded dmoz dataset")
	return records, nil
}
