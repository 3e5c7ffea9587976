package http

import (
	"time"

	"sociograph/internal/model"
	"sociograph/internal/store"
	"sociograph/internal/transform"
)

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// CreateJobRequest is the input shape for POST /v1/jobs. Dates are
// YYYY-MM-DD strings.
type CreateJobRequest struct {
	Name              string   `json:"name"`
	ProjectID         string   `json:"projectId,omitempty"`
	Platform          string   `json:"platform"`
	ContentType       string   `json:"contentType,omitempty"`
	Provider          string   `json:"provider,omitempty"`
	TargetURLs        []string `json:"targetUrls"`
	SourceNames       []string `json:"sourceNames,omitempty"`
	NumOfPosts        int      `json:"numOfPosts,omitempty"`
	StartDate         string   `json:"startDate,omitempty"`
	EndDate           string   `json:"endDate,omitempty"`
	OutputFolderID    *string  `json:"outputFolderId,omitempty"`
	AutoCreateFolders *bool    `json:"autoCreateFolders,omitempty"`
}

// JobItem is the client-facing view of one scrape job.
type JobItem struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	ProjectID         string     `json:"projectId,omitempty"`
	Platform          string     `json:"platform"`
	ContentType       string     `json:"contentType"`
	Provider          string     `json:"provider"`
	TargetURLs        []string   `json:"targetUrls"`
	SourceNames       []string   `json:"sourceNames"`
	NumOfPosts        int        `json:"numOfPosts"`
	StartDate         *string    `json:"startDate,omitempty"`
	EndDate           *string    `json:"endDate,omitempty"`
	OutputFolderID    *string    `json:"outputFolderId,omitempty"`
	AutoCreateFolders bool       `json:"autoCreateFolders"`
	Status            string     `json:"status"`
	TotalURLs         int        `json:"totalUrls"`
	ProcessedURLs     int        `json:"processedUrls"`
	SuccessfulScrapes int        `json:"successfulScrapes"`
	FailedScrapes     int        `json:"failedScrapes"`
	Error             string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

type JobResponse struct {
	Success bool     `json:"success"`
	Job     *JobItem `json:"job,omitempty"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type ListJobsResponse struct {
	Success bool      `json:"success"`
	Jobs    []JobItem `json:"jobs"`
	Code    string    `json:"code,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// JobStatusResponse is the compact polling view of a job.
type JobStatusResponse struct {
	Success  bool           `json:"success"`
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Progress model.Progress `json:"progress"`
	Error    string         `json:"error,omitempty"`
}

type TransformResponse struct {
	Success bool            `json:"success"`
	Stats   transform.Stats `json:"stats"`
}

// CreateAPIKeyRequest is the admin input for minting API keys.
type CreateAPIKeyRequest struct {
	Label              string `json:"label"`
	IsAdmin            bool   `json:"isAdmin,omitempty"`
	RateLimitPerMinute *int   `json:"rateLimitPerMinute,omitempty"`
}

type CreateAPIKeyResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	ID      string `json:"id"`
	Label   string `json:"label"`
}

func jobItem(j store.ScrapeJob) JobItem {
	item := JobItem{
		ID:                j.ID.String(),
		Name:              j.Name,
		ProjectID:         j.ProjectID,
		Platform:          string(j.Platform),
		ContentType:       string(j.ContentType),
		Provider:          j.Provider,
		TargetURLs:        j.TargetURLs,
		SourceNames:       j.SourceNames,
		NumOfPosts:        j.NumOfPosts,
		AutoCreateFolders: j.AutoCreateFolders,
		Status:            j.Status,
		TotalURLs:         j.TotalURLs,
		ProcessedURLs:     j.ProcessedURLs,
		SuccessfulScrapes: j.SuccessfulScrapes,
		FailedScrapes:     j.FailedScrapes,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
	if j.StartDate.Valid {
		s := j.StartDate.Time.Format("2006-01-02")
		item.StartDate = &s
	}
	if j.EndDate.Valid {
		s := j.EndDate.Time.Format("2006-01-02")
		item.EndDate = &s
	}
	if j.OutputFolderID.Valid {
		s := j.OutputFolderID.UUID.String()
		item.OutputFolderID = &s
	}
	if j.ErrorLog.Valid {
		item.Error = j.ErrorLog.String
	}
	if j.StartedAt.Valid {
		t := j.StartedAt.Time
		item.StartedAt = &t
	}
	if j.CompletedAt.Valid {
		t := j.CompletedAt.Time
		item.CompletedAt = &t
	}
	return item
}
