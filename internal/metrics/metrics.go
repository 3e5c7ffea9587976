package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and the scrape
// pipeline. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	jobsTotal     = make(map[jobKey]int64)
	urlScrapes    = make(map[urlKey]int64)
	providerPolls = make(map[string]int64)

	postsNormalized    = make(map[string]int64)
	commentsNormalized = make(map[string]int64)

	retentionJobsDeleted = make(map[string]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type jobKey struct {
	Platform string
	Status   string
}

type urlKey struct {
	Platform string
	Success  string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordJobStatus counts a job status transition (including creation
// as pending).
func RecordJobStatus(platform, status string) {
	mu.Lock()
	defer mu.Unlock()
	jobsTotal[jobKey{Platform: platform, Status: status}]++
}

// RecordURLScrape counts one attempted source URL and whether it
// yielded results.
func RecordURLScrape(platform string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	urlScrapes[urlKey{Platform: platform, Success: s}]++
}

// RecordProviderPoll counts one status poll against a provider.
func RecordProviderPoll(provider string) {
	mu.Lock()
	defer mu.Unlock()
	providerPolls[provider]++
}

// RecordNormalized counts posts and comments written by the transform
// step for a platform.
func RecordNormalized(platform string, posts, comments int) {
	mu.Lock()
	defer mu.Unlock()

	if posts > 0 {
		postsNormalized[platform] += int64(posts)
	}
	if comments > 0 {
		commentsNormalized[platform] += int64(comments)
	}
}

// RecordRetentionJobs increments the counter of jobs deleted by TTL for
// a given terminal status.
func RecordRetentionJobs(status string, deleted int64) {
	if deleted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionJobsDeleted[status] += deleted
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP sociograph_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE sociograph_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "sociograph_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP sociograph_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE sociograph_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP sociograph_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE sociograph_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "sociograph_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "sociograph_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	// Job lifecycle metrics
	b.WriteString("# HELP sociograph_jobs_total Job status transitions by platform\n")
	b.WriteString("# TYPE sociograph_jobs_total counter\n")

	var jobKeys []jobKey
	for k := range jobsTotal {
		jobKeys = append(jobKeys, k)
	}
	sort.Slice(jobKeys, func(i, j int) bool {
		if jobKeys[i].Platform != jobKeys[j].Platform {
			return jobKeys[i].Platform < jobKeys[j].Platform
		}
		return jobKeys[i].Status < jobKeys[j].Status
	})

	for _, k := range jobKeys {
		v := jobsTotal[k]
		fmt.Fprintf(&b, "sociograph_jobs_total{platform=\"%s\",status=\"%s\"} %d\n",
			k.Platform, k.Status, v)
	}

	b.WriteString("# HELP sociograph_url_scrapes_total Attempted source URLs by platform and outcome\n")
	b.WriteString("# TYPE sociograph_url_scrapes_total counter\n")

	var urlKeys []urlKey
	for k := range urlScrapes {
		urlKeys = append(urlKeys, k)
	}
	sort.Slice(urlKeys, func(i, j int) bool {
		if urlKeys[i].Platform != urlKeys[j].Platform {
			return urlKeys[i].Platform < urlKeys[j].Platform
		}
		return urlKeys[i].Success < urlKeys[j].Success
	})

	for _, k := range urlKeys {
		v := urlScrapes[k]
		fmt.Fprintf(&b, "sociograph_url_scrapes_total{platform=\"%s\",success=\"%s\"} %d\n",
			k.Platform, k.Success, v)
	}

	b.WriteString("# HELP sociograph_provider_polls_total Provider run status polls\n")
	b.WriteString("# TYPE sociograph_provider_polls_total counter\n")

	var providers []string
	for p := range providerPolls {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	for _, p := range providers {
		fmt.Fprintf(&b, "sociograph_provider_polls_total{provider=\"%s\"} %d\n", p, providerPolls[p])
	}

	// Transform metrics
	b.WriteString("# HELP sociograph_posts_normalized_total Posts written by the transform step\n")
	b.WriteString("# TYPE sociograph_posts_normalized_total counter\n")

	var postPlatforms []string
	for p := range postsNormalized {
		postPlatforms = append(postPlatforms, p)
	}
	sort.Strings(postPlatforms)
	for _, p := range postPlatforms {
		fmt.Fprintf(&b, "sociograph_posts_normalized_total{platform=\"%s\"} %d\n", p, postsNormalized[p])
	}

	b.WriteString("# HELP sociograph_comments_normalized_total Comments written by the transform step\n")
	b.WriteString("# TYPE sociograph_comments_normalized_total counter\n")

	var commentPlatforms []string
	for p := range commentsNormalized {
		commentPlatforms = append(commentPlatforms, p)
	}
	sort.Strings(commentPlatforms)
	for _, p := range commentPlatforms {
		fmt.Fprintf(&b, "sociograph_comments_normalized_total{platform=\"%s\"} %d\n", p, commentsNormalized[p])
	}

	// Retention metrics
	b.WriteString("# HELP sociograph_retention_jobs_deleted_total Total jobs deleted by TTL\n")
	b.WriteString("# TYPE sociograph_retention_jobs_deleted_total counter\n")

	var statuses []string
	for s := range retentionJobsDeleted {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(&b, "sociograph_retention_jobs_deleted_total{status=\"%s\"} %d\n", s, retentionJobsDeleted[s])
	}

	return b.String()
}
