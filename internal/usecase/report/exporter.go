package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// Exporter renders a processed meeting as an XLSX workbook with one
// sheet per insight family.
type Exporter struct {
	meetings repositories.MeetingRepository
	insights repositories.InsightRepository
	logger   *zap.Logger
}

// NewExporter creates a report exporter
func NewExporter(meetings repositories.MeetingRepository, insights repositories.InsightRepository, logger *zap.Logger) *Exporter {
	return &Exporter{meetings: meetings, insights: insights, logger: logger}
}

// ExportXLSX writes the meeting report workbook to w. The meeting must
// be in the ready state.
func (e *Exporter) ExportXLSX(ctx context.Context, meetingID string, w io.Writer) error {
	meeting, err := e.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting.Status != entities.MeetingStatusReady {
		return fmt.Errorf("%w: meeting %s is %s", ucerrors.ErrMeetingNotReady, meetingID, meeting.Status)
	}

	summary, err := e.insights.GetSummaryByMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummarySheet(f, meeting, summary); err != nil {
		return err
	}
	if err := e.writeDecisionsSheet(ctx, f, meetingID); err != nil {
		return err
	}
	if err := e.writeActionItemsSheet(ctx, f, meetingID); err != nil {
		return err
	}
	if err := e.writeTopicsSheet(ctx, f, meetingID); err != nil {
		return err
	}
	if err := e.writeSentimentsSheet(ctx, f, meetingID); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if e.logger != nil {
		e.logger.Info("📤 Report exported", zap.String("meeting_id", meetingID))
	}
	return nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, meeting *entities.Meeting, summary *entities.Summary) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Meeting", meeting.Title},
		{"Status", string(meeting.Status)},
		{"Language", meeting.Language},
		{"Duration", formatClock(meeting.DurationSeconds)},
		{"Key topics", strings.Join(summary.KeyTopics, ", ")},
		{"Risks", strings.Join(summary.Risks, "; ")},
	}
	if ov := summary.SentimentOverview; ov != nil {
		rows = append(rows,
			[]interface{}{"Sentiment", ov.Label},
			[]interface{}{"Sentiment score", ov.Score},
			[]interface{}{"Vibe", ov.Vibe},
			[]interface{}{"Rationale", ov.Rationale},
		)
	}
	rows = append(rows, []interface{}{}, []interface{}{"Summary"}, []interface{}{summary.SummaryText})

	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 18)
}

func (e *Exporter) writeDecisionsSheet(ctx context.Context, f *excelize.File, meetingID string) error {
	decisions, err := e.insights.ListDecisions(ctx, meetingID)
	if err != nil {
		return err
	}
	rows := [][]interface{}{{"Text", "Owner", "Timestamp"}}
	for _, d := range decisions {
		rows = append(rows, []interface{}{d.Text, strOrEmpty(d.Owner), clockOrEmpty(d.Timestamp)})
	}
	return writeSheet(f, "Decisions", rows)
}

func (e *Exporter) writeActionItemsSheet(ctx context.Context, f *excelize.File, meetingID string) error {
	items, err := e.insights.ListActionItems(ctx, meetingID)
	if err != nil {
		return err
	}
	rows := [][]interface{}{{"Text", "Owner", "Timestamp"}}
	for _, a := range items {
		rows = append(rows, []interface{}{a.Text, strOrEmpty(a.Owner), clockOrEmpty(a.Timestamp)})
	}
	return writeSheet(f, "Action Items", rows)
}

func (e *Exporter) writeTopicsSheet(ctx context.Context, f *excelize.File, meetingID string) error {
	topics, err := e.insights.ListTopics(ctx, meetingID)
	if err != nil {
		return err
	}
	rows := [][]interface{}{{"Topic"}}
	for _, t := range topics {
		rows = append(rows, []interface{}{t.Topic})
	}
	return writeSheet(f, "Topics", rows)
}

func (e *Exporter) writeSentimentsSheet(ctx context.Context, f *excelize.File, meetingID string) error {
	sentiments, err := e.insights.ListSentiments(ctx, meetingID)
	if err != nil {
		return err
	}
	rows := [][]interface{}{{"Start", "End", "Speaker", "Score", "Label"}}
	for _, s := range sentiments {
		rows = append(rows, []interface{}{
			formatClock(s.Start), formatClock(s.End), s.Speaker, s.Score, string(s.Label),
		})
	}
	return writeSheet(f, "Sentiments", rows)
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, val); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(name, "A", "A", 60)
}

func formatClock(sec float64) string {
	s := int(sec)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clockOrEmpty(ts *float64) string {
	if ts == nil {
		return ""
	}
	return formatClock(*ts)
}
