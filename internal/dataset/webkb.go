package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadWebKB reads a WebKB style directory tree laid out as
// root/<label>/<university>/<url-file>. Each file name encodes the
// page URL with "/" replaced by "^"; the file contents are ignored
// because only the URL string matters here.
func ReadWebKB(root string) ([]Record, error) {
	labelDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read webkb root: %w", err)
	}

	var records []Record
	skipped := 0
	for _, labelDir := range labelDirs {
		if !labelDir.IsDir() {
			continue
		}
		label := labelDir.Name()

		uniDirs, err := os.ReadDir(filepath.Join(root, label))
		if err != nil {
			return nil, fmt.Errorf("failed to read webkb label dir %s: %w", label, err)
		}
		for _, uniDir := range uniDirs {
			if !uniDir.IsDir() {
				continue
			}
			university := uniDir.Name()

			files, err := os.ReadDir(filepath.Join(root, label, university))
			if err != nil {
				return nil, fmt.Errorf("failed to read webkb university dir %s/%s: %w", label, university, err)
			}
			for _, file := range files {
				if file.IsDir() {
					continue
				}
				url := strings.ReplaceAll(file.Name(), "^", "/")
				if !strings.HasPrefix(url, "http") {
					skipped++
					continue
				}
				records = append(records, Record{
					URL:        url,
					Label:      label,
					Source:     string(FormatWebKB),
					University: university,
				})
			}
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("webkb tree %s has no url files", root)
	}

	log.Debug().
		Str("root", root).
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("Loaded webkb dataset")
	return records, nil
}
