package handler

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/errors"
	"github.com/meetwise-team/meeting-insights/internal/adapter/dto/common"
	dto "github.com/meetwise-team/meeting-insights/internal/adapter/dto/meeting"
	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	jobuse "github.com/meetwise-team/meeting-insights/internal/usecase/job"
	meetinguse "github.com/meetwise-team/meeting-insights/internal/usecase/meeting"
)

// Meeting handles meeting lifecycle endpoints
type Meeting struct {
	svc    *meetinguse.Service
	jobs   *jobuse.Service
	logger *zap.Logger
}

// NewMeetingHandler creates a meeting handler. jobs may be nil, which
// disables the automatic processing kick-off after uploads.
func NewMeetingHandler(svc *meetinguse.Service, jobs *jobuse.Service, logger *zap.Logger) *Meeting {
	return &Meeting{svc: svc, jobs: jobs, logger: logger}
}

// Create registers a new meeting
func (h *Meeting) Create(c echo.Context) error {
	var req dto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	meeting, err := h.svc.Create(c.Request().Context(), req.Title)
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, dto.FromMeeting(meeting))
}

// Get returns one meeting
func (h *Meeting) Get(c echo.Context) error {
	meeting, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, dto.FromMeeting(meeting))
}

// List returns meetings filtered by status with pagination
func (h *Meeting) List(c echo.Context) error {
	var req dto.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	filters := repositories.MeetingFilters{
		Status: req.Status,
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	}

	meetings, total, err := h.svc.List(c.Request().Context(), filters)
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}

	items := make([]dto.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		items = append(items, dto.FromMeeting(m))
	}
	return HandleSuccess(h.logger, c, common.ListResponse{
		Data:       items,
		Pagination: common.NewPagination(req.Page, req.PageSize, total),
	})
}

// Delete removes a meeting and everything derived from it
func (h *Meeting) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"deleted": true})
}

// Upload stores one audio file for the meeting. Expects a multipart
// form with the media under the "file" field.
func (h *Meeting) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing \"file\" form field"))
	}

	src, err := fh.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer src.Close()

	contentType := fh.Header.Get("Content-Type")
	meetingID := c.Param("id")
	file, err := h.svc.UploadMedia(c.Request().Context(), meetingID, fh.Filename, contentType, fh.Size, src)
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}

	// Kick off processing right away; an already-running job wins
	var jobResp *dto.JobResponse
	if h.jobs != nil {
		job, err := h.jobs.Enqueue(c.Request().Context(), meetingID, entities.JobKindProcess)
		switch {
		case err == nil:
			resp := dto.FromJob(job, nil)
			jobResp = &resp
		case stdErrors.Is(err, ucerrors.ErrJobAlreadyActive):
		default:
			if h.logger != nil {
				h.logger.Warn("⚠️ Auto-process enqueue failed", zap.String("meeting_id", meetingID), zap.Error(err))
			}
		}
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"file": dto.FromFile(file),
		"job":  jobResp,
	})
}

// Files lists the meeting's stored media
func (h *Meeting) Files(c echo.Context) error {
	files, err := h.svc.Files(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	items := make([]dto.FileResponse, 0, len(files))
	for _, f := range files {
		items = append(items, dto.FromFile(f))
	}
	return HandleSuccess(h.logger, c, items)
}

// Download streams one stored media file back to the client
func (h *Meeting) Download(c echo.Context) error {
	file, rc, err := h.svc.OpenFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	defer rc.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.Stream(http.StatusOK, contentType, rc)
}

// Transcript returns the meeting's segments in timeline order
func (h *Meeting) Transcript(c echo.Context) error {
	segments, err := h.svc.Transcript(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, segments)
}

// Insights returns the summary plus all exploded insight rows
func (h *Meeting) Insights(c echo.Context) error {
	insights, err := h.svc.Insights(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, insights)
}

// Search runs a semantic query over indexed transcript segments
func (h *Meeting) Search(c echo.Context) error {
	var req dto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	hits, err := h.svc.Search(c.Request().Context(), req.Query, req.MeetingID, req.TopK)
	if err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{
		"query": req.Query,
		"hits":  hits,
	})
}
