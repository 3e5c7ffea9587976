package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sociograph/internal/jobs"
	"sociograph/internal/model"
)

// createJobHandler validates a job submission and persists it as
// pending. The job does not scrape anything until it is started or the
// worker picks it up.
func createJobHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   "invalid JSON body: " + err.Error(),
		})
	}

	platform, err := model.ParsePlatform(req.Platform)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   err.Error(),
		})
	}
	contentType, err := model.ParseContentType(req.ContentType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   err.Error(),
		})
	}

	spec := model.JobSpec{
		Name:              req.Name,
		ProjectID:         req.ProjectID,
		Platform:          platform,
		ContentType:       contentType,
		Provider:          req.Provider,
		TargetURLs:        req.TargetURLs,
		SourceNames:       req.SourceNames,
		NumOfPosts:        req.NumOfPosts,
		OutputFolderID:    req.OutputFolderID,
		AutoCreateFolders: true,
	}
	if req.AutoCreateFolders != nil {
		spec.AutoCreateFolders = *req.AutoCreateFolders
	}

	if spec.StartDate, err = parseDate(req.StartDate, "startDate"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false, Code: "INVALID_ARGUMENT", Error: err.Error(),
		})
	}
	if spec.EndDate, err = parseDate(req.EndDate, "endDate"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false, Code: "INVALID_ARGUMENT", Error: err.Error(),
		})
	}

	job, err := orch.CreateJob(c.Context(), spec)
	if err != nil {
		if jobs.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "INVALID_ARGUMENT",
				Error:   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	item := jobItem(job)
	return c.Status(fiber.StatusCreated).JSON(JobResponse{Success: true, Job: &item})
}

// listJobsHandler returns recent jobs, newest first, with optional
// status and platform filters.
func listJobsHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Code:    "INVALID_ARGUMENT",
				Error:   "invalid limit value",
			})
		}
		limit = n
	}

	list, err := orch.ListJobs(c.Context(), c.Query("status"), c.Query("platform"), int32(limit))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	items := make([]JobItem, 0, len(list))
	for _, j := range list {
		items = append(items, jobItem(j))
	}
	return c.JSON(ListJobsResponse{Success: true, Jobs: items})
}

func getJobHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	id, ok := parseJobID(c)
	if !ok {
		return nil
	}

	job, err := orch.GetJob(c.Context(), id)
	if err != nil {
		return jobLookupError(c, err)
	}

	item := jobItem(job)
	return c.JSON(JobResponse{Success: true, Job: &item})
}

// jobStatusHandler is the compact polling endpoint: status plus
// progress counters.
func jobStatusHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	id, ok := parseJobID(c)
	if !ok {
		return nil
	}

	job, err := orch.GetJob(c.Context(), id)
	if err != nil {
		return jobLookupError(c, err)
	}

	resp := JobStatusResponse{
		Success:  true,
		ID:       job.ID.String(),
		Status:   job.Status,
		Progress: jobs.Progress(job),
	}
	if job.ErrorLog.Valid {
		resp.Error = job.ErrorLog.String
	}
	return c.JSON(resp)
}

func parseJobID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   "invalid job id",
		})
		return uuid.Nil, false
	}
	return id, true
}

func jobLookupError(c *fiber.Ctx, err error) error {
	if jobs.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "job not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Error:   err.Error(),
	})
}

func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected YYYY-MM-DD", field)
	}
	return &t, nil
}
