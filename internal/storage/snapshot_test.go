package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordlys-ml/urlclass/internal/dataset"
)

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{URL: "http://www.arts-site.com/", Label: "arts", Source: "dmoz"},
		{URL: "http://sports.example.org/news", Label: "sports", Source: "dmoz"},
		{URL: "http://phish.bad-site.xyz/login", Label: "bad", Source: "phishing"},
		{URL: "http://www.cs.cornell.edu/users/jdoe", Label: "student", Source: "webkb", University: "cornell"},
	}
}

func TestNewSnapshotGroupsAndStamps(t *testing.T) {
	snap := NewSnapshot(sampleRecords(), 42)

	assert.NotEmpty(t, snap.Manifest.ID)
	assert.Equal(t, int64(42), snap.Manifest.Seed)
	assert.Len(t, snap.Records["dmoz"], 2)
	assert.Len(t, snap.Records["phishing"], 1)
	assert.Len(t, snap.Records["webkb"], 1)
}

func TestSnapshotAllIsDeterministic(t *testing.T) {
	a := NewSnapshot(sampleRecords(), 7)
	b := NewSnapshot(sampleRecords(), 7)

	assert.Equal(t, a.All(), b.All())
	assert.Len(t, a.All(), 4)
}

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), NewCollector())
	require.NoError(t, err)

	snap := NewSnapshot(sampleRecords(), 42)
	dir, err := store.Save(snap)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	require.Len(t, snap.Manifest.Datasets, 3)
	for _, df := range snap.Manifest.Datasets {
		assert.Len(t, df.SHA256, 64)
	}

	loaded, err := store.Load(snap.Manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Manifest.ID, loaded.Manifest.ID)
	assert.Equal(t, snap.Records, loaded.Records)
}

func TestFSStoreDetectsCorruption(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root, nil)
	require.NoError(t, err)

	snap := NewSnapshot(sampleRecords(), 42)
	dir, err := store.Save(snap)
	require.NoError(t, err)

	// Flip a byte in one dataset file.
	path := filepath.Join(dir, "dmoz.jsonl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = store.Load(snap.Manifest.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum")
}

func TestFSStoreList(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), nil)
	require.NoError(t, err)

	first := NewSnapshot(sampleRecords(), 1)
	second := NewSnapshot(sampleRecords(), 2)
	second.Manifest.CreatedAt = first.Manifest.CreatedAt.Add(1)

	_, err = store.Save(first)
	require.NoError(t, err)
	_, err = store.Save(second)
	require.NoError(t, err)

	manifests, err := store.List()
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, second.Manifest.ID, manifests[0].ID, "newest snapshot must come first")
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector()
	store, err := NewFSStore(t.TempDir(), c)
	require.NoError(t, err)

	snap := NewSnapshot(sampleRecords(), 42)
	_, err = store.Save(snap)
	require.NoError(t, err)
	_, err = store.Load(snap.Manifest.ID)
	require.NoError(t, err)
	_, err = store.Load("missing")
	require.Error(t, err)

	summary := c.Summary()
	assert.Equal(t, 1, summary["save"].Count)
	assert.Equal(t, 2, summary["load"].Count)
	assert.Equal(t, 1, summary["load"].Failures)
	assert.Equal(t, 0, summary["save"].Failures)
}
