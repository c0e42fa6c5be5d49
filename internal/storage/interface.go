package storage

// Store persists snapshots. The filesystem store writes plain
// directories; the git store additionally commits every snapshot so
// experiment inputs carry history.
type Store interface {
	// Save persists the snapshot and returns a store specific
	// reference: the directory path for filesystem stores, the
	// commit hash for git backed ones.
	Save(snap *Snapshot) (string, error)
	// Load reads a snapshot by manifest ID and verifies every
	// dataset checksum.
	Load(id string) (*Snapshot, error)
	// List returns the manifests of all stored snapshots, newest
	// first.
	List() ([]Manifest, error)
}
