package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// FSStore keeps snapshots as plain directories under a root, one
// directory per manifest ID.
type FSStore struct {
	root    string
	metrics MetricsCollector
}

// NewFSStore returns a filesystem store rooted at dir, creating it if
// needed. A nil metrics collector disables operation metrics.
func NewFSStore(dir string, metrics MetricsCollector) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot root: %w", err)
	}
	return &FSStore{root: dir, metrics: metrics}, nil
}

// Save writes the snapshot directory and returns its path.
func (s *FSStore) Save(snap *Snapshot) (string, error) {
	start := time.Now()
	dir := filepath.Join(s.root, snap.Manifest.ID)
	_, err := snap.writeTo(dir)
	recordMetric(s.metrics, "save", "fs", start, err)
	if err != nil {
		return "", err
	}
	log.Debug().Str("id", snap.Manifest.ID).Str("dir", dir).Msg("Saved snapshot")
	return dir, nil
}

// Load reads a snapshot by ID, verifying checksums.
func (s *FSStore) Load(id string) (*Snapshot, error) {
	start := time.Now()
	snap, err := readFrom(filepath.Join(s.root, id))
	recordMetric(s.metrics, "load", "fs", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns every stored manifest, newest first. Directories
// without a readable manifest are skipped with a warning.
func (s *FSStore) List() ([]Manifest, error) {
	start := time.Now()
	manifests, err := listManifests(s.root)
	recordMetric(s.metrics, "list", "fs", start, err)
	return manifests, err
}

func listManifests(root string) ([]Manifest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot root: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, entry.Name(), ManifestName))
		if err != nil {
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			log.Warn().Err(err).Str("dir", entry.Name()).Msg("Skipping snapshot with broken manifest")
			continue
		}
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
	return manifests, nil
}
