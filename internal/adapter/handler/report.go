package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	reportuse "github.com/meetwise-team/meeting-insights/internal/usecase/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Report handles report export endpoints
type Report struct {
	exporter *reportuse.Exporter
	logger   *zap.Logger
}

// NewReportHandler creates a report handler
func NewReportHandler(exporter *reportuse.Exporter, logger *zap.Logger) *Report {
	return &Report{exporter: exporter, logger: logger}
}

// ExportXLSX downloads the meeting report as an XLSX workbook
func (h *Report) ExportXLSX(c echo.Context) error {
	meetingID := c.Param("id")

	var buf bytes.Buffer
	if err := h.exporter.ExportXLSX(c.Request().Context(), meetingID, &buf); err != nil {
		return HandleError(h.logger, c, MapUsecaseError(err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "meeting-report-"+meetingID+".xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
