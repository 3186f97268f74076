package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/errors"
	dto "github.com/meetwise-team/meeting-insights/internal/adapter/dto/meeting"
	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	jobuse "github.com/meetwise-team/meeting-insights/internal/usecase/job"
)

// Job handles processing job endpoints
type Job struct {
	svc    *jobuse.Service
	logger *zap.Logger
}

// NewJobHandler creates a job handler
func NewJobHandler(svc *jobuse.Service, logger *zap.Logger) *Job {
	return &Job{svc: svc, logger: logger}
}

// Process starts a pipeline run for the meeting. The optional body
// {"force": true} reprocesses a meeting that already has insights.
func (h *Job) Process(c echo.Context) error {
	var req dto.ProcessMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	kind := entities.JobKindProcess
	if req.Force {
		kind = entities.JobKindReprocess
	}

	job, err := h.svc.Enqueue(c.Request().Context(), c.Param("id"), kind)
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, dto.FromJob(job, nil))
}

// ReprocessAll re-enqueues every meeting that has media
func (h *Job) ReprocessAll(c echo.Context) error {
	started, err := h.svc.ReprocessAll(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"started": started})
}

// Status returns one job with its latest progress snapshot
func (h *Job) Status(c echo.Context) error {
	job, progress, err := h.svc.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, dto.FromJob(job, progress))
}

// ListByMeeting returns the meeting's jobs, newest first
func (h *Job) ListByMeeting(c echo.Context) error {
	jobs, err := h.svc.ListByMeeting(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	items := make([]dto.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, dto.FromJob(j, nil))
	}
	return HandleSuccess(h.logger, c, items)
}
