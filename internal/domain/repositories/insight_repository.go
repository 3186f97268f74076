package repositories

import (
	"context"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
)

// SegmentRepository defines the interface for transcript segments
type SegmentRepository interface {
	// Replace swaps the meeting's segments for a fresh set in one
	// transaction. A processing run always rewrites the full transcript.
	Replace(ctx context.Context, meetingID string, segments []*entities.TranscriptSegment) error

	ListByMeeting(ctx context.Context, meetingID string) ([]*entities.TranscriptSegment, error)
	CountByMeeting(ctx context.Context, meetingID string) (int64, error)
}

// InsightRepository defines the interface for summaries and exploded
// insight rows
type InsightRepository interface {
	// SaveSummary upserts the one-per-meeting summary row
	SaveSummary(ctx context.Context, summary *entities.Summary) error
	GetSummaryByMeeting(ctx context.Context, meetingID string) (*entities.Summary, error)

	// Exploded rows append; callers that want a clean slate call
	// ClearExploded first.
	AppendDecisions(ctx context.Context, decisions []*entities.Decision) error
	AppendActionItems(ctx context.Context, items []*entities.ActionItem) error
	AppendTopics(ctx context.Context, topics []*entities.TopicTag) error

	// ReplaceSentiments keeps the one-row-per-segment invariant
	ReplaceSentiments(ctx context.Context, meetingID string, sentiments []*entities.Sentiment) error

	// ClearExploded removes decisions, action items and topics for a
	// forced re-run
	ClearExploded(ctx context.Context, meetingID string) error

	ListDecisions(ctx context.Context, meetingID string) ([]*entities.Decision, error)
	ListActionItems(ctx context.Context, meetingID string) ([]*entities.ActionItem, error)
	ListTopics(ctx context.Context, meetingID string) ([]*entities.TopicTag, error)
	ListSentiments(ctx context.Context, meetingID string) ([]*entities.Sentiment, error)
}

// JobRepository defines the interface for processing jobs and their
// progress events
type JobRepository interface {
	Create(ctx context.Context, job *entities.Job) error
	Update(ctx context.Context, job *entities.Job) error
	FindByID(ctx context.Context, id string) (*entities.Job, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]*entities.Job, error)
	FindActiveByMeeting(ctx context.Context, meetingID string) (*entities.Job, error)

	AppendEvent(ctx context.Context, event *entities.JobEvent) error
	LatestEvent(ctx context.Context, jobID string) (*entities.JobEvent, error)
}
