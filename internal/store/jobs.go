package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"sociograph/internal/model"
)

// ScrapeJob mirrors one row of the scrape_jobs table.
type ScrapeJob struct {
	ID                uuid.UUID
	Name              string
	ProjectID         string
	Platform          model.Platform
	ContentType       model.ContentType
	Provider          string
	TargetURLs        []string
	SourceNames       []string
	NumOfPosts        int
	StartDate         sql.NullTime
	EndDate           sql.NullTime
	OutputFolderID    uuid.NullUUID
	AutoCreateFolders bool
	Status            string
	TotalURLs         int
	ProcessedURLs     int
	SuccessfulScrapes int
	FailedScrapes     int
	ProviderRunID     sql.NullString
	ErrorLog          sql.NullString
	ClaimedBy         sql.NullString
	LeaseExpiresAt    sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StartedAt         sql.NullTime
	CompletedAt       sql.NullTime
}

const jobColumns = `id, name, project_id, platform, content_type, provider,
	target_urls, source_names, num_of_posts, start_date, end_date,
	output_folder_id, auto_create_folders, status, total_urls, processed_urls,
	successful_scrapes, failed_scrapes, provider_run_id, error_log,
	claimed_by, lease_expires_at, created_at, updated_at, started_at, completed_at`

func scanJob(row interface{ Scan(dest ...any) error }) (ScrapeJob, error) {
	var (
		j                 ScrapeJob
		rawURLs, rawNames []byte
	)
	err := row.Scan(
		&j.ID, &j.Name, &j.ProjectID, &j.Platform, &j.ContentType, &j.Provider,
		&rawURLs, &rawNames, &j.NumOfPosts, &j.StartDate, &j.EndDate,
		&j.OutputFolderID, &j.AutoCreateFolders, &j.Status, &j.TotalURLs, &j.ProcessedURLs,
		&j.SuccessfulScrapes, &j.FailedScrapes, &j.ProviderRunID, &j.ErrorLog,
		&j.ClaimedBy, &j.LeaseExpiresAt, &j.CreatedAt, &j.UpdatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if err != nil {
		return ScrapeJob{}, err
	}
	if j.TargetURLs, err = unmarshalStrings(rawURLs); err != nil {
		return ScrapeJob{}, err
	}
	if j.SourceNames, err = unmarshalStrings(rawNames); err != nil {
		return ScrapeJob{}, err
	}
	return j, nil
}

// CreateScrapeJob inserts a new pending job row from a validated spec.
func (s *Store) CreateScrapeJob(ctx context.Context, id uuid.UUID, spec model.JobSpec) (ScrapeJob, error) {
	urls, err := marshalStrings(spec.TargetURLs)
	if err != nil {
		return ScrapeJob{}, err
	}
	names, err := marshalStrings(spec.SourceNames)
	if err != nil {
		return ScrapeJob{}, err
	}

	var start, end sql.NullTime
	if spec.StartDate != nil {
		start = sql.NullTime{Time: *spec.StartDate, Valid: true}
	}
	if spec.EndDate != nil {
		end = sql.NullTime{Time: *spec.EndDate, Valid: true}
	}
	var outFolder uuid.NullUUID
	if spec.OutputFolderID != nil {
		if fid, err := uuid.Parse(*spec.OutputFolderID); err == nil {
			outFolder = uuid.NullUUID{UUID: fid, Valid: true}
		}
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO scrape_jobs (
			id, name, project_id, platform, content_type, provider,
			target_urls, source_names, num_of_posts, start_date, end_date,
			output_folder_id, auto_create_folders, status, total_urls
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'pending',$14)
		RETURNING `+jobColumns,
		id, spec.Name, spec.ProjectID, spec.Platform, spec.ContentType, spec.Provider,
		urls, names, spec.NumOfPosts, start, end,
		outFolder, spec.AutoCreateFolders, len(spec.TargetURLs),
	)
	return scanJob(row)
}

// GetScrapeJob fetches one job by id.
func (s *Store) GetScrapeJob(ctx context.Context, id uuid.UUID) (ScrapeJob, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM scrape_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// ListScrapeJobs returns recent jobs, optionally filtered by status and
// platform. Empty filter strings match everything.
func (s *Store) ListScrapeJobs(ctx context.Context, status, platform string, limit int32) ([]ScrapeJob, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM scrape_jobs
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR platform = $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		status, platform, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []ScrapeJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ClaimScrapeJob transitions a pending job to running on behalf of one
// worker. The conditional update is the lock: if another worker already
// claimed the job (or it is not pending), zero rows match and false is
// returned.
func (s *Store) ClaimScrapeJob(ctx context.Context, id uuid.UUID, workerID string, leaseTTL time.Duration) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE scrape_jobs
		SET status = 'running',
		    started_at = now(),
		    claimed_by = $2,
		    lease_expires_at = now() + $3::interval,
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, workerID, leaseTTL.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateJobProgress writes the per-URL counters and renews the worker's
// lease in the same statement.
func (s *Store) UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int, leaseTTL time.Duration) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE scrape_jobs
		SET processed_urls = $2,
		    successful_scrapes = $3,
		    failed_scrapes = $4,
		    lease_expires_at = now() + $5::interval,
		    updated_at = now()
		WHERE id = $1`,
		id, processed, successful, failed, leaseTTL.String())
	return err
}

// SetJobProviderRunID records the in-flight provider run handle so the
// job can be observed and cancelled.
func (s *Store) SetJobProviderRunID(ctx context.Context, id uuid.UUID, runID string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE scrape_jobs SET provider_run_id = $2, updated_at = now() WHERE id = $1`,
		id, runID)
	return err
}

// FinishScrapeJob moves a job into a terminal status, stamps
// completed_at, releases the lease, and records the last fatal error if
// there was one. A job that already reached a terminal status is left
// untouched, so a cancel racing the worker's own completion write
// cannot rewrite history.
func (s *Store) FinishScrapeJob(ctx context.Context, id uuid.UUID, status string, errLog *string) error {
	var sqlErr sql.NullString
	if errLog != nil {
		sqlErr = sql.NullString{String: *errLog, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx, `
		UPDATE scrape_jobs
		SET status = $2,
		    error_log = COALESCE($3, error_log),
		    completed_at = now(),
		    claimed_by = NULL,
		    lease_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1
		  AND status NOT IN ('completed', 'failed', 'cancelled')`,
		id, status, sqlErr)
	return err
}

// ReapExpiredJobs fails running jobs whose worker lease lapsed, so a
// crashed worker cannot leave a job running forever.
func (s *Store) ReapExpiredJobs(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE scrape_jobs
		SET status = 'failed',
		    error_log = 'worker lease expired',
		    completed_at = now(),
		    claimed_by = NULL,
		    lease_expires_at = NULL,
		    updated_at = now()
		WHERE status = 'running' AND lease_expires_at IS NOT NULL AND lease_expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredJobsByStatus deletes terminal jobs (and, via cascade,
// their raw results) older than the cutoff.
func (s *Store) DeleteExpiredJobsByStatus(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM scrape_jobs WHERE status = $1 AND created_at < $2`,
		status, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
