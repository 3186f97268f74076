package meeting

import (
	"time"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/cache"
)

// MeetingResponse is the API shape of a meeting
type MeetingResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	Language        string    `json:"language,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Error           *string   `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromMeeting converts a meeting entity to its response shape
func FromMeeting(m *entities.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:              m.ID,
		Title:           m.Title,
		Status:          string(m.Status),
		Language:        m.Language,
		DurationSeconds: m.DurationSeconds,
		Error:           m.Error,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FileResponse is the API shape of a stored media file
type FileResponse struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromFile converts a media file entity to its response shape. The
// storage locator stays internal; clients download through the API.
func FromFile(f *entities.MediaFile) FileResponse {
	return FileResponse{
		ID:           f.ID,
		MeetingID:    f.MeetingID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		Kind:         string(f.Kind),
		CreatedAt:    f.CreatedAt,
	}
}

// ProgressResponse is the latest progress snapshot of a job
type ProgressResponse struct {
	Pct       int       `json:"pct"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobResponse is the API shape of a processing job
type JobResponse struct {
	ID             string            `json:"id"`
	MeetingID      string            `json:"meeting_id"`
	Kind           string            `json:"kind"`
	Status         string            `json:"status"`
	Error          *string           `json:"error,omitempty"`
	Progress       *ProgressResponse `json:"progress,omitempty"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FromJob converts a job entity plus an optional progress snapshot
func FromJob(j *entities.Job, p *cache.Progress) JobResponse {
	resp := JobResponse{
		ID:             j.ID,
		MeetingID:      j.MeetingID,
		Kind:           string(j.Kind),
		Status:         string(j.Status),
		Error:          j.Error,
		ElapsedSeconds: j.ElapsedSeconds(),
		StartedAt:      j.StartedAt,
		FinishedAt:     j.FinishedAt,
		CreatedAt:      j.CreatedAt,
	}
	if p != nil {
		resp.Progress = &ProgressResponse{Pct: p.Pct, Message: p.Message, UpdatedAt: p.UpdatedAt}
	}
	return resp
}
