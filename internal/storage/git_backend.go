package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"
)

// snapshotsDir is the directory inside the repository that holds one
// subdirectory per snapshot.
const snapshotsDir = "snapshots"

// GitStore commits every snapshot into a local git repository so the
// exact inputs of past experiments stay recoverable.
type GitStore struct {
	repo     *git.Repository
	repoPath string
	metrics  MetricsCollector
}

// NewGitStore opens the repository at repoPath, initializing a fresh
// one when none exists. A nil metrics collector disables operation
// metrics.
func NewGitStore(repoPath string, metrics MetricsCollector) (*GitStore, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(repoPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to init git repository: %w", err)
		}
		log.Info().Str("path", repoPath).Msg("Initialized snapshot repository")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &GitStore{repo: repo, repoPath: repoPath, metrics: metrics}, nil
}

// Save writes the snapshot under snapshots/<id> and commits it,
// returning the commit hash.
func (g *GitStore) Save(snap *Snapshot) (string, error) {
	start := time.Now()
	hash, err := g.save(snap)
	recordMetric(g.metrics, "save", "git", start, err)
	return hash, err
}

func (g *GitStore) save(snap *Snapshot) (string, error) {
	relDir := filepath.Join(snapshotsDir, snap.Manifest.ID)
	files, err := snap.writeTo(filepath.Join(g.repoPath, relDir))
	if err != nil {
		return "", err
	}

	w, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, file := range files {
		if _, err := w.Add(filepath.ToSlash(filepath.Join(relDir, file))); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", file, err)
		}
	}

	total := 0
	for _, df := range snap.Manifest.Datasets {
		total += df.Records
	}
	commit, err := w.Commit(
		fmt.Sprintf("Add snapshot %s (%d records, seed %d)", snap.Manifest.ID, total, snap.Manifest.Seed),
		&git.CommitOptions{
			Author: &object.Signature{
				Name:  "urlclass snapshot",
				Email: "snapshots@urlclass.local",
				When:  time.Now(),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	log.Debug().
		Str("id", snap.Manifest.ID).
		Str("commit", commit.String()).
		Msg("Committed snapshot")
	return commit.String(), nil
}

// Load reads a committed snapshot from the worktree by manifest ID.
func (g *GitStore) Load(id string) (*Snapshot, error) {
	start := time.Now()
	snap, err := readFrom(filepath.Join(g.repoPath, snapshotsDir, id))
	recordMetric(g.metrics, "load", "git", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns the manifests of all committed snapshots, newest first.
func (g *GitStore) List() ([]Manifest, error) {
	start := time.Now()
	manifests, err := listManifests(filepath.Join(g.repoPath, snapshotsDir))
	recordMetric(g.metrics, "list", "git", start, err)
	if errors.Is(err, os.ErrNotExist) {
		// An empty repository has no snapshots directory yet.
		return nil, nil
	}
	return manifests, err
}

// History returns the commit messages touching the snapshots
// directory, newest first, capped at limit (0 means no cap).
func (g *GitStore) History(limit int) ([]string, error) {
	iter, err := g.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read git log: %w", err)
	}
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		if limit > 0 && len(messages) >= limit {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("failed to walk git log: %w", err)
	}
	return messages, nil
}

var errStopIteration = errors.New("stop iteration")
