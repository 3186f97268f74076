package meeting

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/search"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/storage"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// Insights bundles everything derived from one processed meeting
type Insights struct {
	Summary     *entities.Summary      `json:"summary"`
	Decisions   []*entities.Decision   `json:"decisions"`
	ActionItems []*entities.ActionItem `json:"action_items"`
	Topics      []*entities.TopicTag   `json:"topics"`
	Sentiments  []*entities.Sentiment  `json:"sentiments"`
}

// Service handles meeting lifecycle: CRUD, media uploads, transcript
// and insight reads, and semantic search.
type Service struct {
	meetings repositories.MeetingRepository
	files    repositories.FileRepository
	segments repositories.SegmentRepository
	insights repositories.InsightRepository
	store    storage.Store
	index    search.Index
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates a meeting service
func NewService(
	meetings repositories.MeetingRepository,
	files repositories.FileRepository,
	segments repositories.SegmentRepository,
	insights repositories.InsightRepository,
	store storage.Store,
	index search.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings: meetings,
		files:    files,
		segments: segments,
		insights: insights,
		store:    store,
		index:    index,
		cfg:      cfg,
		logger:   logger,
	}
}

// Create registers a new meeting
func (s *Service) Create(ctx context.Context, title string) (*entities.Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ucerrors.ErrInvalidInput)
	}

	meeting := entities.NewMeeting(title)
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("✅ Meeting created", zap.String("meeting_id", meeting.ID), zap.String("title", title))
	}
	return meeting, nil
}

// Get returns one meeting
func (s *Service) Get(ctx context.Context, id string) (*entities.Meeting, error) {
	return s.meetings.FindByID(ctx, id)
}

// List returns meetings matching the filters plus a total count
func (s *Service) List(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.meetings.List(ctx, filters)
}

// Delete removes a meeting, its derived rows and its index entries
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.meetings.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.index.Remove(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Index cleanup failed", zap.String("meeting_id", id), zap.Error(err))
	}
	if err := s.meetings.Delete(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("✅ Meeting deleted", zap.String("meeting_id", id))
	}
	return nil
}

// UploadMedia validates and stores one audio file for the meeting and
// moves it into the uploaded state.
func (s *Service) UploadMedia(ctx context.Context, meetingID, filename, contentType string, size int64, r io.Reader) (*entities.MediaFile, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	if !s.cfg.AllowedExtension(ext) {
		return nil, fmt.Errorf("%w: %q", ucerrors.ErrUnsupportedMedia, ext)
	}
	maxBytes := int64(s.cfg.Upload.MaxMB) << 20
	if size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d MB)", ucerrors.ErrUploadTooLarge, size, s.cfg.Upload.MaxMB)
	}

	locator, err := s.store.Save(ctx, meetingID, filename, r, size, contentType)
	if err != nil {
		return nil, err
	}

	file := entities.NewMediaFile(meetingID, locator, filename, entities.MediaFileKindAudio)
	file.MimeType = contentType
	file.SizeBytes = size
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	meeting.MarkUploaded()
	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("📥 Media uploaded",
			zap.String("meeting_id", meetingID),
			zap.String("file_id", file.ID),
			zap.Int64("size_bytes", size))
	}
	return file, nil
}

// Files lists the meeting's stored media
func (s *Service) Files(ctx context.Context, meetingID string) ([]*entities.MediaFile, error) {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.files.ListByMeeting(ctx, meetingID)
}

// OpenFile streams one stored media file
func (s *Service) OpenFile(ctx context.Context, fileID string) (*entities.MediaFile, io.ReadCloser, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, file.Path)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// Transcript returns the meeting's segments in timeline order
func (s *Service) Transcript(ctx context.Context, meetingID string) ([]*entities.TranscriptSegment, error) {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.segments.ListByMeeting(ctx, meetingID)
}

// Insights returns the summary plus all exploded insight rows. The
// meeting must have been processed at least once.
func (s *Service) Insights(ctx context.Context, meetingID string) (*Insights, error) {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	summary, err := s.insights.GetSummaryByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	out := &Insights{Summary: summary}
	if out.Decisions, err = s.insights.ListDecisions(ctx, meetingID); err != nil {
		return nil, err
	}
	if out.ActionItems, err = s.insights.ListActionItems(ctx, meetingID); err != nil {
		return nil, err
	}
	if out.Topics, err = s.insights.ListTopics(ctx, meetingID); err != nil {
		return nil, err
	}
	if out.Sentiments, err = s.insights.ListSentiments(ctx, meetingID); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchResult is a search hit enriched with the meeting title
type SearchResult struct {
	search.Hit
	Title string `json:"title,omitempty"`
}

// Search runs a semantic query over indexed segments. An empty
// meetingID searches across all meetings.
func (s *Service) Search(ctx context.Context, query, meetingID string, topK int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ucerrors.ErrInvalidInput)
	}
	if meetingID != "" {
		if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
			return nil, err
		}
	}
	if topK <= 0 || topK > 50 {
		topK = 5
	}

	hits, err := s.index.Search(ctx, query, meetingID, topK)
	if err != nil {
		return nil, err
	}

	titles := map[string]string{}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		title, ok := titles[hit.MeetingID]
		if !ok {
			if m, err := s.meetings.FindByID(ctx, hit.MeetingID); err == nil {
				title = m.Title
			}
			titles[hit.MeetingID] = title
		}
		results = append(results, SearchResult{Hit: hit, Title: title})
	}
	return results, nil
}
