package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sociograph/internal/config"
	"sociograph/internal/model"
)

// Client talks to a scraping provider over its HTTP contract:
//
//	POST /actor/{id}/start      -> {"id": "<runID>"}
//	GET  /run/{runID}           -> {"status": "...", "defaultDatasetId": "..."}
//	GET  /dataset/{id}/items    -> [ {...}, {...} ]
//	POST /run/{runID}/abort     -> 2xx
//
// Both supported providers (the pay-per-use actor platform and the
// self-hosted browser-automation cluster) speak this contract; they
// differ only in base URL, credentials, and actor configuration.
type Client struct {
	name    string
	baseURL string
	token   string
	actors  map[string]config.ActorConfig
	http    *http.Client
}

// NewApify builds the gateway for the pay-per-use actor platform.
func NewApify(cfg config.ApifyConfig) *Client {
	return &Client{
		name:    "apify",
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		actors:  cfg.Actors,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NewCluster builds the gateway for the browser-automation cluster.
func NewCluster(cfg config.ClusterConfig) *Client {
	return &Client{
		name:    "cluster",
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		actors:  cfg.Actors,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Name() string { return c.name }

// buildRunInput assembles the actor input document: the static
// platform-specific params from configuration, plus the target URL and
// result limit injected under the actor's expected key names.
func buildRunInput(actor config.ActorConfig, url string, params SubmitParams) map[string]any {
	input := make(map[string]any, len(actor.Params)+2)
	for k, v := range actor.Params {
		input[k] = v
	}

	urlKey := actor.URLKey
	if urlKey == "" {
		urlKey = "startUrls"
	}
	switch actor.URLFormat {
	case "string":
		input[urlKey] = url
	case "objectList":
		input[urlKey] = []map[string]string{{"url": url}}
	default: // list of plain strings
		input[urlKey] = []string{url}
	}

	if actor.LimitKey != "" && params.NumOfPosts > 0 {
		input[actor.LimitKey] = params.NumOfPosts
	}
	if params.StartDate != nil {
		input["onlyPostsNewerThan"] = params.StartDate.Format("2006-01-02")
	}
	if params.EndDate != nil {
		input["onlyPostsOlderThan"] = params.EndDate.Format("2006-01-02")
	}

	return input
}

func (c *Client) Submit(ctx context.Context, platform model.Platform, url string, params SubmitParams) (string, error) {
	actor, ok := c.actors[string(platform)]
	if !ok || actor.ID == "" {
		return "", fmt.Errorf("no %s actor configured for platform %s", c.name, platform)
	}

	body, err := json.Marshal(buildRunInput(actor, url, params))
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/actor/%s/start", c.baseURL, actor.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: submit to %s: %v", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: submit to %s: status %d: %s", ErrUnavailable, c.name, resp.StatusCode, respBody)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode submit response: %v", ErrUnavailable, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: submit to %s returned no run id", ErrUnavailable, c.name)
	}
	return out.ID, nil
}

func (c *Client) Poll(ctx context.Context, runID string) (RunState, error) {
	endpoint := fmt.Sprintf("%s/run/%s", c.baseURL, runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RunState{}, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return RunState{}, fmt.Errorf("%w: poll %s run %s: %v", ErrUnavailable, c.name, runID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RunState{}, fmt.Errorf("%w: poll %s run %s: status %d", ErrUnavailable, c.name, runID, resp.StatusCode)
	}

	var out struct {
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return RunState{}, fmt.Errorf("%w: decode poll response: %v", ErrUnavailable, err)
	}

	status := RunStatus(out.Status)
	// Some deployments report TIMED-OUT with a dash.
	if out.Status == "TIMED-OUT" {
		status = StatusTimedOut
	}
	return RunState{Status: status, DatasetID: out.DefaultDatasetID}, nil
}

func (c *Client) FetchResults(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/dataset/%s/items", c.baseURL, datasetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s dataset %s: %v", ErrUnavailable, c.name, datasetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: fetch %s dataset %s: status %d", ErrUnavailable, c.name, datasetID, resp.StatusCode)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: decode dataset items: %v", ErrUnavailable, err)
	}
	return items, nil
}

func (c *Client) Abort(ctx context.Context, runID string) error {
	endpoint := fmt.Sprintf("%s/run/%s/abort", c.baseURL, runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: abort %s run %s: %v", ErrUnavailable, c.name, runID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: abort %s run %s: status %d", ErrUnavailable, c.name, runID, resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
