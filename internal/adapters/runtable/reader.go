// Package runtable reads cherry-picking run rows for destination plates
// from the automation system's SQL run table.
package runtable

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"plateops/pkg/domain"
)

const defaultDSN = "postgres://localhost/plateops?sslmode=disable"

// Reader fetches run-table rows over a pgx-backed database/sql connection.
type Reader struct {
	db *sql.DB
}

// Open connects to the run database using the provided DSN (falls back to a
// local default) and verifies connectivity.
func Open(ctx context.Context, dsn string) (*Reader, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run table: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping run table: %w", err)
	}
	return &Reader{db: db}, nil
}

// NewReader wraps an existing connection, mostly for tests.
func NewReader(db *sql.DB) *Reader { return &Reader{db: db} }

// Close releases the underlying connection pool.
func (r *Reader) Close() error { return r.db.Close() }

const rowsQuery = `
SELECT id, run_id, destination_barcode, source_barcode, source_coordinate,
       destination_coordinate, sample_uuid, control, control_type, completed
FROM run_records
WHERE destination_barcode = $1
ORDER BY run_id DESC, id ASC`

// RowsForDestination fetches the rows for a destination barcode, keeping
// only the most recent run and dropping incomplete non-control rows.
func (r *Reader) RowsForDestination(ctx context.Context, barcode string) ([]domain.RunRow, error) {
	rows, err := r.db.QueryContext(ctx, rowsQuery, barcode)
	if err != nil {
		return nil, fmt.Errorf("query run table for %s: %w", barcode, err)
	}
	defer func() { _ = rows.Close() }()

	var all []domain.RunRow
	for rows.Next() {
		var (
			row         domain.RunRow
			controlType sql.NullString
		)
		err := rows.Scan(&row.ID, &row.RunID, &row.DestinationBarcode, &row.SourceBarcode,
			&row.SourceCoordinate, &row.DestinationCoordinate, &row.SampleUUID,
			&row.Control, &controlType, &row.Completed)
		if err != nil {
			return nil, fmt.Errorf("scan run table row: %w", err)
		}
		row.ControlType = controlType.String
		all = append(all, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run table rows: %w", err)
	}
	return LatestRunRows(all), nil
}

// LatestRunRows keeps the rows belonging to the highest run id and drops
// non-control rows that never completed.
func LatestRunRows(rows []domain.RunRow) []domain.RunRow {
	if len(rows) == 0 {
		return nil
	}
	latest := rows[0].RunID
	for _, row := range rows {
		if row.RunID > latest {
			latest = row.RunID
		}
	}
	var kept []domain.RunRow
	for _, row := range rows {
		if row.RunID != latest {
			continue
		}
		if !row.Control && !row.Completed {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}
