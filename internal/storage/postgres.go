package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/dataset"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS url_records (
	id          BIGSERIAL PRIMARY KEY,
	snapshot_id TEXT NOT NULL,
	url         TEXT NOT NULL,
	label       TEXT NOT NULL,
	source      TEXT NOT NULL,
	university  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS url_records_snapshot_idx ON url_records (snapshot_id);
CREATE INDEX IF NOT EXISTS url_records_source_label_idx ON url_records (source, label);
`

// PostgresSink mirrors normalized records into Postgres for ad-hoc
// SQL analysis. It is a write-mostly side channel; snapshots stay the
// source of truth.
type PostgresSink struct {
	db *sql.DB
}

// OpenPostgres connects with a lib/pq DSN and ensures the schema.
func OpenPostgres(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	sink := &PostgresSink{db: db}
	if err := sink.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

// NewPostgresSink wraps an existing connection, used by tests.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) ensureSchema() error {
	if _, err := s.db.Exec(recordsSchema); err != nil {
		return fmt.Errorf("failed to create url_records schema: %w", err)
	}
	return nil
}

// InsertRecords bulk loads records under a snapshot ID using COPY.
func (s *PostgresSink) InsertRecords(snapshotID string, records []dataset.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(pq.CopyIn("url_records", "snapshot_id", "url", "label", "source", "university"))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, r := range records {
		if _, err := stmt.Exec(snapshotID, r.URL, r.Label, r.Source, r.University); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to copy record %s: %w", r.URL, err)
		}
	}
	// Flush the COPY buffer.
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		tx.Rollback()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	log.Debug().Str("snapshot", snapshotID).Int("records", len(records)).Msg("Inserted records into postgres")
	return nil
}

// CountBySource returns per-source record counts for one snapshot.
func (s *PostgresSink) CountBySource(snapshotID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT source, COUNT(*) FROM url_records WHERE snapshot_id = $1 GROUP BY source`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

// Close releases the underlying connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
