package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"sociograph/internal/config"
	"sociograph/internal/model"
	"sociograph/internal/provider"
	"sociograph/internal/store"
)

// fakeStore is an in-memory jobs.Store for exercising the orchestrator
// without a database.
type fakeStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]store.ScrapeJob
	results []store.RawResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[uuid.UUID]store.ScrapeJob)}
}

func (f *fakeStore) CreateScrapeJob(ctx context.Context, id uuid.UUID, spec model.JobSpec) (store.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	j := store.ScrapeJob{
		ID:          id,
		Name:        spec.Name,
		ProjectID:   spec.ProjectID,
		Platform:    spec.Platform,
		ContentType: spec.ContentType,
		Provider:    spec.Provider,
		TargetURLs:  spec.TargetURLs,
		SourceNames: spec.SourceNames,
		NumOfPosts:  spec.NumOfPosts,
		Status:      string(StatusPending),
		TotalURLs:   len(spec.TargetURLs),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	f.jobs[id] = j
	return j, nil
}

func (f *fakeStore) GetScrapeJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return store.ScrapeJob{}, sql.ErrNoRows
	}
	return j, nil
}

func (f *fakeStore) ListScrapeJobs(ctx context.Context, status, platform string, limit int32) ([]store.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.ScrapeJob
	for _, j := range f.jobs {
		if status != "" && j.Status != status {
			continue
		}
		if platform != "" && string(j.Platform) != platform {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) ClaimScrapeJob(ctx context.Context, id uuid.UUID, workerID string, leaseTTL time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok || j.Status != string(StatusPending) {
		return false, nil
	}
	j.Status = string(StatusRunning)
	j.ClaimedBy = sql.NullString{String: workerID, Valid: true}
	j.StartedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	f.jobs[id] = j
	return true, nil
}

func (f *fakeStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int, leaseTTL time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.ProcessedURLs = processed
	j.SuccessfulScrapes = successful
	j.FailedScrapes = failed
	f.jobs[id] = j
	return nil
}

func (f *fakeStore) SetJobProviderRunID(ctx context.Context, id uuid.UUID, runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	j.ProviderRunID = sql.NullString{String: runID, Valid: true}
	f.jobs[id] = j
	return nil
}

func (f *fakeStore) FinishScrapeJob(ctx context.Context, id uuid.UUID, status string, errLog *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.jobs[id]
	// Mirrors the store's guard: terminal rows are never rewritten.
	if Status(j.Status).Terminal() {
		return nil
	}
	j.Status = status
	if errLog != nil {
		j.ErrorLog = sql.NullString{String: *errLog, Valid: true}
	}
	j.CompletedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	f.jobs[id] = j
	return nil
}

func (f *fakeStore) InsertRawResult(ctx context.Context, id, jobID uuid.UUID, sourceURL, sourceName string, payload json.RawMessage, success bool, errMsg *string) (store.RawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := store.RawResult{ID: id, JobID: jobID, SourceURL: sourceURL, SourceName: sourceName, Success: success}
	if errMsg != nil {
		r.ErrorMessage = sql.NullString{String: *errMsg, Valid: true}
	}
	f.results = append(f.results, r)
	return r, nil
}

func (f *fakeStore) resultCount(success bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.results {
		if r.Success == success {
			n++
		}
	}
	return n
}

// urlBehavior scripts what the fake gateway does for one target URL.
type urlBehavior struct {
	submitErr error
	runStatus provider.RunStatus
	items     []json.RawMessage
	hang      bool
}

type fakeGateway struct {
	mu        sync.Mutex
	behaviors map[string]urlBehavior
	runs      map[string]string // runID -> url
	aborted   int
	nextRun   int
}

func newFakeGateway(behaviors map[string]urlBehavior) *fakeGateway {
	return &fakeGateway{behaviors: behaviors, runs: make(map[string]string)}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Submit(ctx context.Context, platform model.Platform, url string, params provider.SubmitParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b := g.behaviors[url]
	if b.submitErr != nil {
		return "", b.submitErr
	}
	g.nextRun++
	runID := fmt.Sprintf("run-%d", g.nextRun)
	g.runs[runID] = url
	return runID, nil
}

func (g *fakeGateway) Poll(ctx context.Context, runID string) (provider.RunState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b := g.behaviors[g.runs[runID]]
	if b.hang {
		return provider.RunState{Status: provider.StatusRunning}, nil
	}
	status := b.runStatus
	if status == "" {
		status = provider.StatusSucceeded
	}
	return provider.RunState{Status: status, DatasetID: "ds-" + runID}, nil
}

func (g *fakeGateway) FetchResults(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	runID := datasetID[len("ds-"):]
	return g.behaviors[g.runs[runID]].items, nil
}

func (g *fakeGateway) Abort(ctx context.Context, runID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.aborted++
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Worker.ID = "test-worker"
	cfg.Providers.Default = "fake"
	cfg.Providers.PollIntervalS = 1
	return cfg
}

func newTestOrchestrator(st Store, gw provider.Gateway) *Orchestrator {
	return NewOrchestrator(testConfig(), st, map[string]provider.Gateway{"fake": gw}, nil)
}

func createJob(t *testing.T, o *Orchestrator, urls []string, names []string) store.ScrapeJob {
	t.Helper()
	job, err := o.CreateJob(context.Background(), model.JobSpec{
		Name:        "test job",
		Platform:    model.PlatformInstagram,
		TargetURLs:  urls,
		SourceNames: names,
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return job
}

func waitForStatus(t *testing.T, fs *fakeStore, id uuid.UUID, want Status) store.ScrapeJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := fs.GetScrapeJob(context.Background(), id)
		if err != nil {
			t.Fatalf("GetScrapeJob: %v", err)
		}
		if Status(job.Status) == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := fs.GetScrapeJob(context.Background(), id)
	t.Fatalf("job never reached %s, last status %s", want, job.Status)
	return store.ScrapeJob{}
}

func TestCreateJobValidation(t *testing.T) {
	fs := newFakeStore()
	o := newTestOrchestrator(fs, newFakeGateway(nil))

	cases := []struct {
		name string
		spec model.JobSpec
	}{
		{"missing name", model.JobSpec{Platform: model.PlatformInstagram, TargetURLs: []string{"https://x.test/a"}}},
		{"no urls", model.JobSpec{Name: "j", Platform: model.PlatformInstagram}},
		{"blank urls", model.JobSpec{Name: "j", Platform: model.PlatformInstagram, TargetURLs: []string{"  ", ""}}},
		{"unknown provider", model.JobSpec{Name: "j", Platform: model.PlatformInstagram, Provider: "nope", TargetURLs: []string{"https://x.test/a"}}},
	}
	for _, tc := range cases {
		if _, err := o.CreateJob(context.Background(), tc.spec); !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := o.CreateJob(context.Background(), model.JobSpec{
		Name: "j", Platform: model.PlatformInstagram,
		TargetURLs: []string{"https://x.test/a"},
		StartDate:  &start, EndDate: &end,
	})
	if !IsValidation(err) {
		t.Fatalf("inverted date range: expected validation error, got %v", err)
	}
}

func TestCreateJobPadsSourceNames(t *testing.T) {
	fs := newFakeStore()
	o := newTestOrchestrator(fs, newFakeGateway(nil))

	job := createJob(t, o, []string{"https://x.test/a", "https://x.test/b", "https://x.test/c"}, []string{"Alpha"})
	want := []string{"Alpha", "Source 2", "Source 3"}
	if len(job.SourceNames) != len(want) {
		t.Fatalf("expected %d source names, got %v", len(want), job.SourceNames)
	}
	for i, n := range want {
		if job.SourceNames[i] != n {
			t.Fatalf("source name %d: expected %q, got %q", i, n, job.SourceNames[i])
		}
	}
	if job.NumOfPosts != 10 {
		t.Fatalf("expected default numOfPosts 10, got %d", job.NumOfPosts)
	}
}

func TestStartJobRunsAllURLsToCompletion(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`), json.RawMessage(`{"id":"2"}`)}},
		"https://x.test/b": {items: []json.RawMessage{json.RawMessage(`{"id":"3"}`)}},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a", "https://x.test/b"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 2 || done.SuccessfulScrapes != 3 || done.FailedScrapes != 0 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
	if got := fs.resultCount(true); got != 3 {
		t.Fatalf("expected 3 raw results, got %d", got)
	}
	if !done.ProviderRunID.Valid {
		t.Fatal("expected provider run id recorded")
	}
}

func TestProviderFailureCountsURLNotJob(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/ok":   {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
		"https://x.test/down": {submitErr: fmt.Errorf("%w: connection refused", provider.ErrUnavailable)},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/down", "https://x.test/ok"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 2 || done.SuccessfulScrapes != 1 || done.FailedScrapes != 1 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
	if got := fs.resultCount(false); got != 1 {
		t.Fatalf("expected 1 failed raw result, got %d", got)
	}
}

func TestSuccessfulScrapesCountItems(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/rich": {items: []json.RawMessage{
			json.RawMessage(`{"id":"1"}`), json.RawMessage(`{"id":"2"}`), json.RawMessage(`{"id":"3"}`),
		}},
		"https://x.test/down": {submitErr: fmt.Errorf("%w: connection refused", provider.ErrUnavailable)},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/rich", "https://x.test/down"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	// One URL yielding three items and one failed URL: successes count
	// items, the other counters count URLs.
	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 2 || done.SuccessfulScrapes != 3 || done.FailedScrapes != 1 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
}

func TestCompletedJobRunsTransform(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
	})
	o := newTestOrchestrator(fs, gw)

	var mu sync.Mutex
	var transformed []uuid.UUID
	o.SetTransform(func(ctx context.Context, jobID uuid.UUID) error {
		mu.Lock()
		defer mu.Unlock()
		transformed = append(transformed, jobID)
		return nil
	})

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	waitForStatus(t, fs, job.ID, StatusCompleted)

	mu.Lock()
	defer mu.Unlock()
	if len(transformed) != 1 || transformed[0] != job.ID {
		t.Fatalf("expected transform to run once for %s, got %v", job.ID, transformed)
	}
}

func TestTransformErrorDoesNotFailJob(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
	})
	o := newTestOrchestrator(fs, gw)
	o.SetTransform(func(ctx context.Context, jobID uuid.UUID) error {
		return fmt.Errorf("boom")
	})

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ErrorLog.Valid {
		t.Fatalf("expected no error log, got %q", done.ErrorLog.String)
	}
}

func TestPollBudgetTimeoutFailsURL(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/slow": {hang: true},
	})
	cfg := testConfig()
	cfg.Providers.PollBudgetS = 1
	o := NewOrchestrator(cfg, fs, map[string]provider.Gateway{"fake": gw}, nil)

	job := createJob(t, o, []string{"https://x.test/slow"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 1 || done.SuccessfulScrapes != 0 || done.FailedScrapes != 1 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
	if got := fs.resultCount(false); got != 1 {
		t.Fatalf("expected 1 failed raw result, got %d", got)
	}

	gw.mu.Lock()
	aborted := gw.aborted
	gw.mu.Unlock()
	if aborted == 0 {
		t.Fatal("expected run aborted after exceeding the time budget")
	}
}

func TestFailedRunStatusRecordsFailure(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {runStatus: provider.StatusFailed},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 1 || done.FailedScrapes != 1 || done.SuccessfulScrapes != 0 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
}

func TestEmptyDatasetCountsProcessedOnly(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: nil},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCompleted)
	if done.ProcessedURLs != 1 || done.SuccessfulScrapes != 0 || done.FailedScrapes != 0 {
		t.Fatalf("counters: processed=%d successful=%d failed=%d",
			done.ProcessedURLs, done.SuccessfulScrapes, done.FailedScrapes)
	}
}

func TestStartJobRejectsNonPending(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	waitForStatus(t, fs, job.ID, StatusCompleted)

	if _, err := o.StartJob(context.Background(), job.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancelRunningJobAbortsProviderRun(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {hang: true},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	// Wait until the run is in flight, then cancel.
	waitForStatus(t, fs, job.ID, StatusRunning)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, _ := fs.GetScrapeJob(context.Background(), job.ID)
		if j.ProviderRunID.Valid {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := o.CancelJob(context.Background(), job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	done := waitForStatus(t, fs, job.ID, StatusCancelled)
	if done.CompletedAt.Valid == false {
		t.Fatal("expected completedAt set on cancelled job")
	}

	gw.mu.Lock()
	aborted := gw.aborted
	gw.mu.Unlock()
	if aborted == 0 {
		t.Fatal("expected provider run to be aborted")
	}
}

func TestCancelPendingJob(t *testing.T) {
	fs := newFakeStore()
	o := newTestOrchestrator(fs, newFakeGateway(nil))

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if err := o.CancelJob(context.Background(), job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	got, _ := fs.GetScrapeJob(context.Background(), job.ID)
	if Status(got.Status) != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestCancelTerminalJobRejected(t *testing.T) {
	fs := newFakeStore()
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
	})
	o := newTestOrchestrator(fs, gw)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	waitForStatus(t, fs, job.ID, StatusCompleted)

	if err := o.CancelJob(context.Background(), job.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

// staleJobStore hands out one out-of-date job snapshot, standing in
// for a read that raced another process's terminal write.
type staleJobStore struct {
	*fakeStore
	staleMu sync.Mutex
	stale   *store.ScrapeJob
}

func (s *staleJobStore) GetScrapeJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error) {
	s.staleMu.Lock()
	defer s.staleMu.Unlock()
	if s.stale != nil && s.stale.ID == id {
		j := *s.stale
		s.stale = nil
		return j, nil
	}
	return s.fakeStore.GetScrapeJob(ctx, id)
}

func TestCancelRacingCompletionKeepsTerminalStatus(t *testing.T) {
	fs := newFakeStore()
	ss := &staleJobStore{fakeStore: fs}
	gw := newFakeGateway(map[string]urlBehavior{
		"https://x.test/a": {items: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
	})
	o := NewOrchestrator(testConfig(), ss, map[string]provider.Gateway{"fake": gw}, nil)

	job := createJob(t, o, []string{"https://x.test/a"}, nil)
	if _, err := o.StartJob(context.Background(), job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	done := waitForStatus(t, fs, job.ID, StatusCompleted)

	// A cancel that read the job while it was still running must not
	// rewrite the completed status the worker wrote in the meantime.
	snapshot := done
	snapshot.Status = string(StatusRunning)
	ss.staleMu.Lock()
	ss.stale = &snapshot
	ss.staleMu.Unlock()

	if err := o.CancelJob(context.Background(), job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	got, _ := fs.GetScrapeJob(context.Background(), job.ID)
	if Status(got.Status) != StatusCompleted {
		t.Fatalf("expected completed to stick, got %s", got.Status)
	}
	if got.ErrorLog.Valid {
		t.Fatalf("expected no error log, got %q", got.ErrorLog.String)
	}
}

func TestProgressPercentage(t *testing.T) {
	job := store.ScrapeJob{TotalURLs: 4, ProcessedURLs: 1, SuccessfulScrapes: 1}
	p := Progress(job)
	if p.Percentage != 25 {
		t.Fatalf("expected 25%%, got %v", p.Percentage)
	}

	empty := Progress(store.ScrapeJob{})
	if empty.Percentage != 0 {
		t.Fatalf("expected 0%% for empty job, got %v", empty.Percentage)
	}
}
