package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sociograph/internal/jobs"
	"sociograph/internal/store"
	"sociograph/internal/transform"
)

// startJobHandler claims a pending job and launches its scrape loop in
// this process.
func startJobHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	id, ok := parseJobID(c)
	if !ok {
		return nil
	}

	job, err := orch.StartJob(c.Context(), id)
	if err != nil {
		if jobs.IsNotFound(err) {
			return jobLookupError(c, err)
		}
		if errors.Is(err, jobs.ErrInvalidState) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Success: false,
				Code:    "INVALID_STATE",
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
	return c.Status(fiber.StatusAccepted).JSON(JobResponse{Success: true, Job: &item})
}

// cancelJobHandler requests cancellation of a pending or running job.
// For a job running in this process the scrape loop writes the terminal
// status shortly after, so the returned job may still read running.
func cancelJobHandler(c *fiber.Ctx) error {
	orch := c.Locals("orchestrator").(*jobs.Orchestrator)

	id, ok := parseJobID(c)
	if !ok {
		return nil
	}

	if err := orch.CancelJob(c.Context(), id); err != nil {
		if jobs.IsNotFound(err) {
			return jobLookupError(c, err)
		}
		if errors.Is(err, jobs.ErrInvalidState) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Success: false,
				Code:    "INVALID_STATE",
				Error:   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	job, err := orch.GetJob(c.Context(), id)
	if err != nil {
		return jobLookupError(c, err)
	}
	item := jobItem(job)
	return c.Status(fiber.StatusAccepted).JSON(JobResponse{Success: true, Job: &item})
}

// transformJobHandler runs (or re-runs) the raw-to-normalized transform
// for a job's stored results.
func transformJobHandler(c *fiber.Ctx) error {
	tr := c.Locals("transformer").(*transform.Transformer)

	id, ok := parseJobID(c)
	if !ok {
		return nil
	}

	stats, err := tr.TransformJob(c.Context(), id)
	if err != nil {
		if jobs.IsNotFound(err) {
			return jobLookupError(c, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.JSON(TransformResponse{Success: true, Stats: stats})
}

// createAPIKeyHandler mints a new API key. Admin only; the raw key is
// returned once and never stored.
func createAPIKeyHandler(c *fiber.Ctx) error {
	st := c.Locals("store").(*store.Store)

	var req CreateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   "invalid JSON body: " + err.Error(),
		})
	}
	if req.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "INVALID_ARGUMENT",
			Error:   "label is required",
		})
	}

	raw, key, err := st.CreateRandomAPIKey(c.Context(), req.Label, req.IsAdmin, req.RateLimitPerMinute)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Code:    "INTERNAL_ERROR",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(CreateAPIKeyResponse{
		Success: true,
		Key:     raw,
		ID:      key.ID.String(),
		Label:   key.Label,
	})
}
