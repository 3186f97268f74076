package repositories

import (
	"context"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
)

// MeetingFilters narrows List queries
type MeetingFilters struct {
	Status string
	Limit  int
	Offset int
}

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id string) (*entities.Meeting, error)

	// Update updates an existing meeting
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete removes a meeting and all derived rows
	Delete(ctx context.Context, id string) error

	// List retrieves meetings with filters and a total count
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, int64, error)

	// FindWithoutSummary retrieves meetings that have media but no summary
	// row yet. Used by the startup backfill.
	FindWithoutSummary(ctx context.Context) ([]*entities.Meeting, error)
}

// FileRepository defines the interface for media file records
type FileRepository interface {
	Create(ctx context.Context, file *entities.MediaFile) error
	FindByID(ctx context.Context, id string) (*entities.MediaFile, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]*entities.MediaFile, error)
	LatestAudio(ctx context.Context, meetingID string) (*entities.MediaFile, error)
}
