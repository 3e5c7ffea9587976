package jobs

import (
	"context"
	"log/slog"
	"time"

	"sociograph/internal/config"
	"sociograph/internal/store"
)

// Runner is the background driver for the jobs table. It claims pending
// jobs up to the configured concurrency, reaps jobs whose worker lease
// lapsed, and periodically runs TTL cleanup. The HTTP start endpoint
// shares the same claim path, so a job started explicitly is never
// picked up twice.
type Runner struct {
	cfg    *config.Config
	store  *store.Store
	orch   *Orchestrator
	logger *slog.Logger
}

func NewRunner(cfg *config.Config, st *store.Store, orch *Orchestrator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, store: st, orch: orch, logger: logger}
}

// Start launches the worker loop in the current goroutine. Callers
// typically run this in its own goroutine and keep the process alive.
func (r *Runner) Start(ctx context.Context) {
	pollInterval := time.Duration(r.cfg.Worker.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	maxJobs := r.cfg.Worker.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = 4
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastCleanup time.Time
	cleanupInterval := time.Duration(r.cfg.Retention.CleanupIntervalMinutes) * time.Minute
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}

	for {
		select {
		case <-ctx.Done():
			r.orch.Shutdown()
			return
		case <-ticker.C:
		}

		// Fail jobs abandoned by a crashed worker so they can be seen
		// and retried instead of hanging in running forever.
		if n, err := r.store.ReapExpiredJobs(ctx); err != nil {
			r.logger.Error("reap expired jobs failed", "error", err)
		} else if n > 0 {
			r.logger.Warn("reaped expired jobs", "count", n)
		}

		// Periodically run TTL cleanup for terminal jobs.
		if r.cfg.Retention.Enabled {
			now := time.Now().UTC()
			if lastCleanup.IsZero() || now.Sub(lastCleanup) >= cleanupInterval {
				_ = CleanupExpiredData(ctx, r.cfg, r.store)
				lastCleanup = now
			}
		}

		capacity := maxJobs - r.orch.ActiveJobs()
		if capacity <= 0 {
			continue
		}

		pending, err := r.store.ListScrapeJobs(ctx, string(StatusPending), "", int32(capacity))
		if err != nil {
			r.logger.Error("list pending jobs failed", "error", err)
			continue
		}

		for _, job := range pending {
			claimed, err := r.orch.TryClaim(ctx, job.ID)
			if err != nil {
				r.logger.Error("claim job failed", "job_id", job.ID, "error", err)
				continue
			}
			if claimed {
				r.logger.Info("job claimed", "job_id", job.ID, "platform", job.Platform)
			}
		}
	}
}
