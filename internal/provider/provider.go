// Package provider wraps the external scraping providers behind the
// submit/poll/fetch/abort contract. Providers are opaque: they accept a
// platform-specific input document, run remotely, and eventually expose
// a dataset of raw JSON items. Nothing here validates item schemas.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sociograph/internal/model"
)

// RunStatus is a provider-reported run state.
type RunStatus string

const (
	StatusRunning   RunStatus = "RUNNING"
	StatusSucceeded RunStatus = "SUCCEEDED"
	StatusFailed    RunStatus = "FAILED"
	StatusAborted   RunStatus = "ABORTED"
	StatusTimedOut  RunStatus = "TIMED_OUT"
)

// Terminal reports whether a run has finished, successfully or not.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	default:
		return false
	}
}

// RunState is the result of polling one run.
type RunState struct {
	Status    RunStatus
	DatasetID string
}

// SubmitParams carries the job-level scraping parameters forwarded to
// the provider alongside the target URL.
type SubmitParams struct {
	NumOfPosts int
	StartDate  *time.Time
	EndDate    *time.Time
}

// ErrUnavailable wraps network and auth failures talking to a provider.
// The orchestrator treats it as a per-URL failure, never a job failure.
var ErrUnavailable = errors.New("provider unavailable")

// Gateway is the provider contract the orchestrator drives.
type Gateway interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Submit starts a run for one URL and returns the opaque run id.
	Submit(ctx context.Context, platform model.Platform, url string, params SubmitParams) (string, error)
	// Poll reports the current state of a run.
	Poll(ctx context.Context, runID string) (RunState, error)
	// FetchResults downloads the items of a finished run's dataset.
	FetchResults(ctx context.Context, datasetID string) ([]json.RawMessage, error)
	// Abort requests cancellation of a run. Best effort; callers on the
	// cancellation path log failures instead of propagating them.
	Abort(ctx context.Context, runID string) error
}
