package jobs

import (
	"context"
	"time"

	"sociograph/internal/config"
	"sociograph/internal/metrics"
	"sociograph/internal/store"
)

// RetentionStats captures the number of jobs deleted by TTL cleanup,
// keyed by terminal status.
type RetentionStats struct {
	JobsDeleted map[string]int64 `json:"jobsDeleted"`
}

// CleanupExpiredData deletes old terminal jobs (and, via cascade, their
// raw results) based on retention settings so that the database does
// not grow without bound. Normalized posts and comments are kept.
func CleanupExpiredData(ctx context.Context, cfg *config.Config, st *store.Store) RetentionStats {
	now := time.Now().UTC()
	stats := RetentionStats{JobsDeleted: make(map[string]int64)}

	jobTTL := cfg.Retention.Jobs

	applyJobTTL := func(status Status, days int) {
		if days <= 0 {
			return
		}
		cutoff := now.AddDate(0, 0, -days)
		if n, err := st.DeleteExpiredJobsByStatus(ctx, string(status), cutoff); err == nil && n > 0 {
			stats.JobsDeleted[string(status)] += n
			metrics.RecordRetentionJobs(string(status), n)
		}
	}

	// Effective TTL per status, falling back to defaultDays when a
	// specific value is not provided.
	effectiveDays := func(specific int) int {
		if specific > 0 {
			return specific
		}
		return jobTTL.DefaultDays
	}

	applyJobTTL(StatusCompleted, effectiveDays(jobTTL.CompletedDays))
	applyJobTTL(StatusFailed, effectiveDays(jobTTL.FailedDays))
	applyJobTTL(StatusCancelled, effectiveDays(jobTTL.CancelledDays))

	return stats
}
