package embedding

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Source describes where a named embedding distribution lives under an
// embeddings directory and how its keys are shaped.
type Source struct {
	File      string
	KeyPrefix string
}

// Sources maps the embedding names accepted by the command line tools
// to their files. ConceptNet Numberbatch ships multilingual keys, so
// it carries the English prefix filter.
var Sources = map[string]Source{
	"glove":      {File: "glove.6B.100d.txt"},
	"conceptnet": {File: "numberbatch-19.08.txt", KeyPrefix: "/c/en/"},
	"word2vec":   {File: "word2vec-google-news-300.txt"},
	"fasttext":   {File: "crawl-300d-2M.txt"},
	"sample":     {File: "sample.txt"},
}

// SourceNames returns the known embedding names sorted alphabetically.
func SourceNames() []string {
	names := make([]string, 0, len(Sources))
	for name := range Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadNamed loads one of the known distributions from dir.
func LoadNamed(name, dir string, opts ...LoadOption) (*Table, error) {
	src, ok := Sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown embedding %q, valid names are %s",
			name, strings.Join(SourceNames(), ", "))
	}
	if src.KeyPrefix != "" {
		opts = append(opts, WithKeyPrefix(src.KeyPrefix))
	}
	return Load(filepath.Join(dir, src.File), opts...)
}
