package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sociograph/internal/config"
	"sociograph/internal/metrics"
	"sociograph/internal/model"
	"sociograph/internal/provider"
	"sociograph/internal/store"
)

// Store is the slice of the persistence layer the orchestrator drives.
// It is satisfied by *store.Store; tests substitute an in-memory fake.
type Store interface {
	CreateScrapeJob(ctx context.Context, id uuid.UUID, spec model.JobSpec) (store.ScrapeJob, error)
	GetScrapeJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error)
	ListScrapeJobs(ctx context.Context, status, platform string, limit int32) ([]store.ScrapeJob, error)
	ClaimScrapeJob(ctx context.Context, id uuid.UUID, workerID string, leaseTTL time.Duration) (bool, error)
	UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int, leaseTTL time.Duration) error
	SetJobProviderRunID(ctx context.Context, id uuid.UUID, runID string) error
	FinishScrapeJob(ctx context.Context, id uuid.UUID, status string, errLog *string) error
	InsertRawResult(ctx context.Context, id, jobID uuid.UUID, sourceURL, sourceName string, payload json.RawMessage, success bool, errMsg *string) (store.RawResult, error)
}

// Orchestrator owns the scrape job lifecycle: validation, the
// pending -> running claim, the per-URL provider loop, and the terminal
// transitions. One orchestrator serves both the HTTP start path and the
// background runner; the database claim keeps them from double-running
// a job.
type Orchestrator struct {
	cfg      *config.Config
	store    Store
	gateways map[string]provider.Gateway
	logger   *slog.Logger

	// transform, when set, runs after the URL loop and before the job
	// is marked completed.
	transform TransformFunc

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
	wg      sync.WaitGroup
}

// TransformFunc normalizes a finished job's raw results into posts and
// comments. It is wired at startup to the transform layer.
type TransformFunc func(ctx context.Context, jobID uuid.UUID) error

func NewOrchestrator(cfg *config.Config, st Store, gateways map[string]provider.Gateway, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    st,
		gateways: gateways,
		logger:   logger,
		cancels:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// SetTransform wires the post-scrape normalization step. Completed
// jobs run it synchronously before the terminal status is written.
func (o *Orchestrator) SetTransform(fn TransformFunc) {
	o.transform = fn
}

func (o *Orchestrator) workerID() string {
	if o.cfg.Worker.ID != "" {
		return o.cfg.Worker.ID
	}
	return "sociograph-worker"
}

func (o *Orchestrator) leaseTTL() time.Duration {
	if o.cfg.Worker.LeaseTTLMs > 0 {
		return time.Duration(o.cfg.Worker.LeaseTTLMs) * time.Millisecond
	}
	return 10 * time.Minute
}

func (o *Orchestrator) pollInterval() time.Duration {
	if o.cfg.Providers.PollIntervalS > 0 {
		return time.Duration(o.cfg.Providers.PollIntervalS) * time.Second
	}
	return 10 * time.Second
}

func (o *Orchestrator) pollBudget() time.Duration {
	if o.cfg.Providers.PollBudgetS > 0 {
		return time.Duration(o.cfg.Providers.PollBudgetS) * time.Second
	}
	return 300 * time.Second
}

// ActiveJobs reports how many jobs this process is currently running.
func (o *Orchestrator) ActiveJobs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.cancels)
}

// Shutdown cancels all in-flight jobs and waits for their loops to
// write their terminal status.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	for _, cancel := range o.cancels {
		cancel()
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// CreateJob validates a submission and persists it as a pending job.
// Nothing is scraped until the job is started or picked up by the
// runner.
func (o *Orchestrator) CreateJob(ctx context.Context, spec model.JobSpec) (store.ScrapeJob, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return store.ScrapeJob{}, validationErrf("name is required")
	}

	urls := make([]string, 0, len(spec.TargetURLs))
	for _, u := range spec.TargetURLs {
		if t := strings.TrimSpace(u); t != "" {
			urls = append(urls, t)
		}
	}
	if len(urls) == 0 {
		return store.ScrapeJob{}, validationErrf("at least one target URL is required")
	}
	spec.TargetURLs = urls

	// Pad missing source names so every URL has a label for folder
	// naming and raw result attribution.
	names := spec.SourceNames
	for i := len(names); i < len(urls); i++ {
		names = append(names, fmt.Sprintf("Source %d", i+1))
	}
	spec.SourceNames = names[:len(urls)]

	if spec.NumOfPosts <= 0 {
		spec.NumOfPosts = 10
	}
	if spec.StartDate != nil && spec.EndDate != nil && spec.StartDate.After(*spec.EndDate) {
		return store.ScrapeJob{}, validationErrf("startDate must not be after endDate")
	}

	if spec.Provider == "" {
		spec.Provider = o.cfg.Providers.Default
	}
	if spec.Provider == "" {
		spec.Provider = "apify"
	}
	if _, ok := o.gateways[spec.Provider]; !ok {
		return store.ScrapeJob{}, validationErrf(fmt.Sprintf("unknown provider: %q", spec.Provider))
	}

	job, err := o.store.CreateScrapeJob(ctx, uuid.New(), spec)
	if err != nil {
		return store.ScrapeJob{}, fmt.Errorf("create job: %w", err)
	}
	metrics.RecordJobStatus(string(job.Platform), string(StatusPending))
	o.logger.Info("job created",
		"job_id", job.ID, "platform", job.Platform, "provider", job.Provider, "urls", len(job.TargetURLs))
	return job, nil
}

// GetJob fetches one job by id.
func (o *Orchestrator) GetJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error) {
	return o.store.GetScrapeJob(ctx, id)
}

// ListJobs returns recent jobs, newest first, optionally filtered.
func (o *Orchestrator) ListJobs(ctx context.Context, status, platform string, limit int32) ([]store.ScrapeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return o.store.ListScrapeJobs(ctx, status, platform, limit)
}

// Progress derives the client-facing progress view from the stored
// counters.
func Progress(job store.ScrapeJob) model.Progress {
	p := model.Progress{
		TotalURLs:         job.TotalURLs,
		ProcessedURLs:     job.ProcessedURLs,
		SuccessfulScrapes: job.SuccessfulScrapes,
		FailedScrapes:     job.FailedScrapes,
	}
	if job.TotalURLs > 0 {
		p.Percentage = float64(job.ProcessedURLs) / float64(job.TotalURLs) * 100
	}
	return p
}

// StartJob claims a pending job for this process and launches its
// scrape loop. Only pending jobs can start; a lost claim race reports
// ErrInvalidState just like an explicit wrong-state start.
func (o *Orchestrator) StartJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error) {
	job, err := o.store.GetScrapeJob(ctx, id)
	if err != nil {
		return store.ScrapeJob{}, err
	}
	if Status(job.Status) != StatusPending {
		return store.ScrapeJob{}, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}

	claimed, err := o.TryClaim(ctx, id)
	if err != nil {
		return store.ScrapeJob{}, err
	}
	if !claimed {
		return store.ScrapeJob{}, fmt.Errorf("%w: job was claimed concurrently", ErrInvalidState)
	}
	return o.store.GetScrapeJob(ctx, id)
}

// TryClaim attempts the pending -> running transition for one job and,
// on success, launches the scrape loop in a new goroutine. The runner
// uses this directly; lost races return false without error.
func (o *Orchestrator) TryClaim(ctx context.Context, id uuid.UUID) (bool, error) {
	claimed, err := o.store.ClaimScrapeJob(ctx, id, o.workerID(), o.leaseTTL())
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		return false, nil
	}

	job, err := o.store.GetScrapeJob(ctx, id)
	if err != nil {
		return false, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[job.ID] = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			cancel()
			o.mu.Lock()
			delete(o.cancels, job.ID)
			o.mu.Unlock()
		}()
		o.run(runCtx, job)
	}()
	return true, nil
}

// CancelJob moves a pending or running job to cancelled. For a job
// running in this process the scrape loop observes the cancellation,
// aborts the in-flight provider run, and writes the terminal status
// itself. A pending job, or a running job claimed by a process that is
// gone, is finalized directly.
func (o *Orchestrator) CancelJob(ctx context.Context, id uuid.UUID) error {
	job, err := o.store.GetScrapeJob(ctx, id)
	if err != nil {
		return err
	}

	switch Status(job.Status) {
	case StatusPending:
		return o.finish(job, StatusCancelled, strPtr("cancelled before start"))
	case StatusRunning:
		o.mu.Lock()
		cancel, local := o.cancels[job.ID]
		o.mu.Unlock()
		if local {
			cancel()
			return nil
		}
		// Claimed elsewhere (or the claimer died). Abort the provider
		// run if we know it, then finalize.
		if gw := o.gateways[job.Provider]; gw != nil && job.ProviderRunID.Valid {
			if err := gw.Abort(ctx, job.ProviderRunID.String); err != nil {
				o.logger.Warn("abort provider run failed", "job_id", job.ID, "error", err)
			}
		}
		return o.finish(job, StatusCancelled, strPtr("cancelled by user"))
	default:
		return fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}
}

// run executes the per-URL scrape loop for one claimed job. Store
// writes use a background context so a cancelled run can still record
// its terminal status.
func (o *Orchestrator) run(ctx context.Context, job store.ScrapeJob) {
	gw := o.gateways[job.Provider]
	if gw == nil {
		_ = o.finish(job, StatusFailed, strPtr("unknown provider: "+job.Provider))
		return
	}

	params := provider.SubmitParams{NumOfPosts: job.NumOfPosts}
	if job.StartDate.Valid {
		params.StartDate = timePtr(job.StartDate.Time)
	}
	if job.EndDate.Valid {
		params.EndDate = timePtr(job.EndDate.Time)
	}

	var processed, successful, failed int
	for i, url := range job.TargetURLs {
		if ctx.Err() != nil {
			_ = o.finish(job, StatusCancelled, strPtr("cancelled by user"))
			return
		}

		sourceName := sourceNameAt(job.SourceNames, i)
		items, failMsg := o.scrapeOne(ctx, gw, job, url, sourceName, params)

		if ctx.Err() != nil {
			_ = o.store.UpdateJobProgress(context.Background(), job.ID, processed, successful, failed, o.leaseTTL())
			_ = o.finish(job, StatusCancelled, strPtr("cancelled by user"))
			return
		}

		// Every attempted URL counts as processed, whether it yielded
		// items, failed, or came back empty. Successes count items,
		// not URLs.
		processed++
		successful += items
		if items == 0 && failMsg != "" {
			failed++
		}
		metrics.RecordURLScrape(string(job.Platform), items > 0)

		if err := o.store.UpdateJobProgress(context.Background(), job.ID, processed, successful, failed, o.leaseTTL()); err != nil {
			o.logger.Error("update progress failed", "job_id", job.ID, "error", err)
			_ = o.finish(job, StatusFailed, strPtr("progress write failed: "+err.Error()))
			return
		}
	}

	// Normalize whatever the loop collected before completing. A
	// transform error does not fail the job; the raw results are still
	// there and the step can be re-run over the API.
	if o.transform != nil {
		if err := o.transform(context.Background(), job.ID); err != nil {
			o.logger.Error("transform failed", "job_id", job.ID, "error", err)
		}
	}

	// A job with zero successes still completes; the counters tell the
	// story.
	_ = o.finish(job, StatusCompleted, nil)
}

// scrapeOne submits, polls, and fetches one URL. It returns the number
// of items persisted plus an empty message on success, (0, "") on a
// successful run with an empty dataset, and (0, reason) on any failure.
func (o *Orchestrator) scrapeOne(ctx context.Context, gw provider.Gateway, job store.ScrapeJob, url, sourceName string, params provider.SubmitParams) (int, string) {
	runID, err := gw.Submit(ctx, job.Platform, url, params)
	if err != nil {
		return 0, o.recordFailure(job, url, sourceName, "submit failed: "+err.Error())
	}
	if err := o.store.SetJobProviderRunID(context.Background(), job.ID, runID); err != nil {
		o.logger.Warn("record provider run id failed", "job_id", job.ID, "error", err)
	}

	interval := o.pollInterval()
	deadline := time.Now().Add(o.pollBudget())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var state provider.RunState
	for {
		state, err = gw.Poll(ctx, runID)
		if err != nil {
			if ctx.Err() != nil {
				o.abortRun(gw, runID, job.ID)
				return 0, ""
			}
			return 0, o.recordFailure(job, url, sourceName, "poll failed: "+err.Error())
		}
		metrics.RecordProviderPoll(gw.Name())
		if state.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			o.abortRun(gw, runID, job.ID)
			return 0, o.recordFailure(job, url, sourceName, "provider run exceeded time budget")
		}
		select {
		case <-ctx.Done():
			o.abortRun(gw, runID, job.ID)
			return 0, ""
		case <-ticker.C:
		}
	}

	if state.Status != provider.StatusSucceeded {
		return 0, o.recordFailure(job, url, sourceName, "provider run ended "+string(state.Status))
	}

	items, err := gw.FetchResults(ctx, state.DatasetID)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ""
		}
		return 0, o.recordFailure(job, url, sourceName, "fetch results failed: "+err.Error())
	}
	if len(items) == 0 {
		// The run succeeded but found nothing. Not a failure; the URL
		// just counts as processed.
		o.logger.Info("empty dataset", "job_id", job.ID, "url", url)
		return 0, ""
	}

	for _, item := range items {
		if _, err := o.store.InsertRawResult(context.Background(), uuid.New(), job.ID, url, sourceName, item, true, nil); err != nil {
			return 0, o.recordFailure(job, url, sourceName, "store raw result failed: "+err.Error())
		}
	}
	return len(items), ""
}

// recordFailure persists a failed raw result for one URL and returns
// the message for counter bookkeeping.
func (o *Orchestrator) recordFailure(job store.ScrapeJob, url, sourceName, msg string) string {
	o.logger.Warn("url scrape failed", "job_id", job.ID, "url", url, "error", msg)
	if _, err := o.store.InsertRawResult(context.Background(), uuid.New(), job.ID, url, sourceName, nil, false, &msg); err != nil {
		o.logger.Error("record failed result failed", "job_id", job.ID, "error", err)
	}
	return msg
}

func (o *Orchestrator) abortRun(gw provider.Gateway, runID string, jobID uuid.UUID) {
	if err := gw.Abort(context.Background(), runID); err != nil {
		o.logger.Warn("abort provider run failed", "job_id", jobID, "run_id", runID, "error", err)
	}
}

func (o *Orchestrator) finish(job store.ScrapeJob, status Status, errLog *string) error {
	if err := o.store.FinishScrapeJob(context.Background(), job.ID, string(status), errLog); err != nil {
		o.logger.Error("finish job failed", "job_id", job.ID, "status", status, "error", err)
		return err
	}
	metrics.RecordJobStatus(string(job.Platform), string(status))
	o.logger.Info("job finished", "job_id", job.ID, "status", status)
	return nil
}

func sourceNameAt(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("Source %d", i+1)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// IsNotFound reports whether err is the store's row-not-found error.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
