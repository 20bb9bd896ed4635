package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore persists audit records to a single SQLite table as JSON blobs.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if necessary) the audit database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "plateops-audit.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS audit_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_uuid TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload BLOB NOT NULL,
		recorded_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// RecordErrors persists an aggregated error map against the event UUID.
func (s *SQLiteStore) RecordErrors(ctx context.Context, eventUUID string, errs map[string][]string) error {
	payload, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}
	return s.insert(ctx, eventUUID, KindErrors, payload)
}

// RecordException persists a single fatal exception against the event UUID.
func (s *SQLiteStore) RecordException(ctx context.Context, eventUUID string, cause error) error {
	payload, err := json.Marshal(cause.Error())
	if err != nil {
		return fmt.Errorf("encode exception: %w", err)
	}
	return s.insert(ctx, eventUUID, KindException, payload)
}

func (s *SQLiteStore) insert(ctx context.Context, eventUUID string, kind Kind, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_records(event_uuid, kind, payload, recorded_at) VALUES(?,?,?,?)`,
		eventUUID, string(kind), payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ForEvent returns the records stored against an event UUID, oldest first.
func (s *SQLiteStore) ForEvent(ctx context.Context, eventUUID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, payload, recorded_at FROM audit_records WHERE event_uuid = ? ORDER BY id`,
		eventUUID)
	if err != nil {
		return nil, fmt.Errorf("select audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Record
	for rows.Next() {
		var (
			kind     string
			payload  []byte
			recorded string
		)
		if err := rows.Scan(&kind, &payload, &recorded); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		record := Record{EventUUID: eventUUID, Kind: Kind(kind)}
		switch record.Kind {
		case KindErrors:
			if err := json.Unmarshal(payload, &record.Errors); err != nil {
				return nil, fmt.Errorf("decode errors: %w", err)
			}
		case KindException:
			if err := json.Unmarshal(payload, &record.Exception); err != nil {
				return nil, fmt.Errorf("decode exception: %w", err)
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
			record.RecordedAt = ts
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
