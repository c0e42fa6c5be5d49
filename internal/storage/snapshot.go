// Package storage freezes normalized datasets into snapshots so an
// experiment can be rerun later against byte-identical inputs. A
// snapshot is one directory holding a JSONL file per dataset plus a
// manifest with checksums; stores differ only in where the directory
// lives and whether it is git committed.
package storage

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nordlys-ml/urlclass/internal/dataset"
)

// ManifestName is the manifest file inside every snapshot directory.
const ManifestName = "manifest.json"

// DatasetFile describes one frozen dataset inside a snapshot.
type DatasetFile struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Records int    `json:"records"`
	SHA256  string `json:"sha256"`
}

// Manifest identifies a snapshot and pins its contents.
type Manifest struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Seed      int64         `json:"seed"`
	Datasets  []DatasetFile `json:"datasets"`
}

// Snapshot is a set of shuffled datasets ready to be persisted.
type Snapshot struct {
	Manifest Manifest
	// Records keyed by dataset name, in their persisted order.
	Records map[string][]dataset.Record
}

// NewSnapshot groups records by source, shuffles each group with the
// seed and stamps the result with a fresh UUID.
func NewSnapshot(records []dataset.Record, seed int64) *Snapshot {
	groups := dataset.GroupBySource(records)
	for name := range groups {
		dataset.Shuffle(groups[name], seed)
	}
	return &Snapshot{
		Manifest: Manifest{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
			Seed:      seed,
		},
		Records: groups,
	}
}

// All returns every record over all datasets, shuffled once more with
// the snapshot seed so callers get a stable cross-dataset order.
func (s *Snapshot) All() []dataset.Record {
	names := make([]string, 0, len(s.Records))
	for name := range s.Records {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []dataset.Record
	for _, name := range names {
		all = append(all, s.Records[name]...)
	}
	dataset.Shuffle(all, s.Manifest.Seed)
	return all
}

// writeTo persists the snapshot into dir, filling in the manifest's
// per-dataset file entries, and returns the relative paths written.
func (s *Snapshot) writeTo(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	names := make([]string, 0, len(s.Records))
	for name := range s.Records {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	s.Manifest.Datasets = s.Manifest.Datasets[:0]
	for _, name := range names {
		file := name + ".jsonl"
		sum, err := WriteRecordsJSONL(filepath.Join(dir, file), s.Records[name])
		if err != nil {
			return nil, fmt.Errorf("failed to write dataset %s: %w", name, err)
		}
		s.Manifest.Datasets = append(s.Manifest.Datasets, DatasetFile{
			Name:    name,
			File:    file,
			Records: len(s.Records[name]),
			SHA256:  sum,
		})
		written = append(written, file)
	}

	manifest, err := json.MarshalIndent(s.Manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), manifest, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	return append(written, ManifestName), nil
}

// readFrom loads a snapshot directory and verifies every dataset file
// against the manifest checksum.
func readFrom(dir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot manifest in %s: %w", dir, err)
	}

	snap := &Snapshot{Manifest: manifest, Records: make(map[string][]dataset.Record, len(manifest.Datasets))}
	for _, df := range manifest.Datasets {
		records, sum, err := ReadRecordsJSONL(filepath.Join(dir, df.File))
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", df.Name, err)
		}
		if sum != df.SHA256 {
			return nil, fmt.Errorf("dataset %s is corrupt: checksum %s does not match manifest %s",
				df.Name, sum, df.SHA256)
		}
		if len(records) != df.Records {
			return nil, fmt.Errorf("dataset %s has %d records, manifest says %d",
				df.Name, len(records), df.Records)
		}
		snap.Records[df.Name] = records
	}
	return snap, nil
}

// WriteRecordsJSONL writes one JSON object per line and returns the
// hex SHA-256 of the file contents.
func WriteRecordsJSONL(path string, records []dataset.Record) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	hash := sha256.New()
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(io.MultiWriter(bw, hash))
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return "", err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ReadRecordsJSONL reads a JSONL record file and returns the records
// along with the file's hex SHA-256.
func ReadRecordsJSONL(path string) ([]dataset.Record, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(data)

	var records []dataset.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var r dataset.Record
		if err := dec.Decode(&r); err != nil {
			return nil, "", fmt.Errorf("bad record %d: %w", len(records)+1, err)
		}
		records = append(records, r)
	}
	return records, hex.EncodeToString(sum[:]), nil
}
