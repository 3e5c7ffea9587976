package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sociograph/internal/config"
	"sociograph/internal/model"
)

func testActors() map[string]config.ActorConfig {
	return map[string]config.ActorConfig{
		"instagram": {
			ID:       "actor-ig",
			URLKey:   "directUrls",
			LimitKey: "resultsLimit",
			Params:   map[string]any{"resultsType": "posts"},
		},
		"tiktok": {
			ID:        "actor-tt",
			URLKey:    "profiles",
			URLFormat: "string",
		},
	}
}

func newTestClient(baseURL string) *Client {
	return NewApify(config.ApifyConfig{
		BaseURL: baseURL,
		Token:   "secret-token",
		Actors:  testActors(),
	})
}

func TestSubmitBuildsRunInput(t *testing.T) {
	var gotPath, gotAuth string
	var gotInput map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotInput)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "run-1"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	runID, err := c.Submit(context.Background(), model.PlatformInstagram, "https://www.instagram.com/acme/", SubmitParams{
		NumOfPosts: 25,
		StartDate:  &start,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if runID != "run-1" {
		t.Fatalf("expected run-1, got %q", runID)
	}
	if gotPath != "/actor/actor-ig/start" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	urls, ok := gotInput["directUrls"].([]any)
	if !ok || len(urls) != 1 || urls[0] != "https://www.instagram.com/acme/" {
		t.Fatalf("expected URL under directUrls, got %v", gotInput["directUrls"])
	}
	if gotInput["resultsLimit"] != float64(25) {
		t.Fatalf("expected resultsLimit 25, got %v", gotInput["resultsLimit"])
	}
	if gotInput["resultsType"] != "posts" {
		t.Fatalf("expected static actor params forwarded, got %v", gotInput["resultsType"])
	}
	if gotInput["onlyPostsNewerThan"] != "2025-05-01" {
		t.Fatalf("expected start date forwarded, got %v", gotInput["onlyPostsNewerThan"])
	}
}

func TestSubmitStringURLFormat(t *testing.T) {
	var gotInput map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotInput)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "run-2"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Submit(context.Background(), model.PlatformTikTok, "https://www.tiktok.com/@acme", SubmitParams{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotInput["profiles"] != "https://www.tiktok.com/@acme" {
		t.Fatalf("expected plain string URL, got %v", gotInput["profiles"])
	}
}

func TestSubmitUnconfiguredPlatform(t *testing.T) {
	c := newTestClient("http://provider.invalid")
	if _, err := c.Submit(context.Background(), model.PlatformLinkedIn, "https://linkedin.com/in/x", SubmitParams{}); err == nil {
		t.Fatal("expected error for unconfigured platform actor")
	}
}

func TestPollStatusMapping(t *testing.T) {
	statuses := []struct {
		body string
		want RunStatus
	}{
		{`{"status":"RUNNING","defaultDatasetId":""}`, StatusRunning},
		{`{"status":"SUCCEEDED","defaultDatasetId":"ds-9"}`, StatusSucceeded},
		{`{"status":"TIMED-OUT"}`, StatusTimedOut},
		{`{"status":"ABORTED"}`, StatusAborted},
	}

	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for _, tc := range statuses {
		body = tc.body
		state, err := c.Poll(context.Background(), "run-1")
		if err != nil {
			t.Fatalf("Poll(%s): %v", tc.body, err)
		}
		if state.Status != tc.want {
			t.Fatalf("body %s: expected %s, got %s", tc.body, tc.want, state.Status)
		}
	}

	if !StatusSucceeded.Terminal() || !StatusTimedOut.Terminal() || StatusRunning.Terminal() {
		t.Fatal("terminal classification wrong")
	}
}

func TestFetchResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset/ds-9/items" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	items, err := c.FetchResults(context.Background(), "ds-9")
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestAbort(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.Abort(context.Background(), "run-1"); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if gotPath != "/run/run-1/abort" || gotMethod != http.MethodPost {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestErrorsWrapUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Submit(context.Background(), model.PlatformInstagram, "https://x.test/a", SubmitParams{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := c.Poll(context.Background(), "run-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := c.FetchResults(context.Background(), "ds-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := c.Abort(context.Background(), "run-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
