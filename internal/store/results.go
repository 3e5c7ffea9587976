package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// RawResult mirrors one row of the raw_results table: one scraped item
// (or one failed fetch) for one job and source URL. The payload is kept
// verbatim for audit and re-transformation.
type RawResult struct {
	ID                 uuid.UUID
	JobID              uuid.UUID
	SourceURL          string
	SourceName         string
	Payload            pqtype.NullRawMessage
	Success            bool
	ErrorMessage       sql.NullString
	ImportedToPlatform bool
	ScrapeTimestamp    time.Time
}

const resultColumns = `id, job_id, source_url, source_name, payload,
	success, error_message, imported_to_platform, scrape_timestamp`

func scanResult(row interface{ Scan(dest ...any) error }) (RawResult, error) {
	var r RawResult
	err := row.Scan(
		&r.ID, &r.JobID, &r.SourceURL, &r.SourceName, &r.Payload,
		&r.Success, &r.ErrorMessage, &r.ImportedToPlatform, &r.ScrapeTimestamp,
	)
	return r, err
}

// InsertRawResult stores one provider item for a job. Failed fetches are
// recorded with success=false and the error message instead of a payload.
func (s *Store) InsertRawResult(ctx context.Context, id, jobID uuid.UUID, sourceURL, sourceName string, payload json.RawMessage, success bool, errMsg *string) (RawResult, error) {
	var body pqtype.NullRawMessage
	if len(payload) > 0 {
		body = pqtype.NullRawMessage{RawMessage: payload, Valid: true}
	}
	var sqlErr sql.NullString
	if errMsg != nil {
		sqlErr = sql.NullString{String: *errMsg, Valid: true}
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO raw_results (id, job_id, source_url, source_name, payload, success, error_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+resultColumns,
		id, jobID, sourceURL, sourceName, body, success, sqlErr)
	return scanResult(row)
}

// ListRawResultsByJob returns a job's raw results in insertion order.
// With successOnly set, failed fetches are filtered out (the transform
// path only consumes successes).
func (s *Store) ListRawResultsByJob(ctx context.Context, jobID uuid.UUID, successOnly bool) ([]RawResult, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+resultColumns+` FROM raw_results
		WHERE job_id = $1 AND ($2 = FALSE OR success = TRUE)
		ORDER BY scrape_timestamp, id`,
		jobID, successOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RawResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// MarkRawResultImported flags a raw result as transformed into the
// normalized tables.
func (s *Store) MarkRawResultImported(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE raw_results SET imported_to_platform = TRUE WHERE id = $1`, id)
	return err
}
