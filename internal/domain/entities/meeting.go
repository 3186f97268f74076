package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusPending  MeetingStatus = "pending"  // Created, no media yet
	MeetingStatusUploaded MeetingStatus = "uploaded" // Media stored, not yet processed
	MeetingStatusReady    MeetingStatus = "ready"    // Insights available
	MeetingStatusError    MeetingStatus = "error"    // Last processing run failed
)

// Meeting represents a recorded meeting and its derived insight state
type Meeting struct {
	ID              string        `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title           string        `json:"title" gorm:"type:varchar(512);not null"`
	Status          MeetingStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	Language        string        `json:"language,omitempty" gorm:"type:varchar(20)"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	Error           *string       `json:"error,omitempty" gorm:"type:text"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new meeting
func NewMeeting(title string) *Meeting {
	return &Meeting{
		ID:        identifier.New("mtg"),
		Title:     title,
		Status:    MeetingStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// MarkUploaded records that media has been stored for the meeting
func (m *Meeting) MarkUploaded() {
	m.Status = MeetingStatusUploaded
	m.Error = nil
	m.UpdatedAt = time.Now()
}

// MarkReady records a successful processing run
func (m *Meeting) MarkReady(language string, durationSeconds float64) {
	m.Status = MeetingStatusReady
	m.Language = language
	m.DurationSeconds = durationSeconds
	m.Error = nil
	m.UpdatedAt = time.Now()
}

// MarkError records a failed processing run
func (m *Meeting) MarkError(errMsg string) {
	m.Status = MeetingStatusError
	m.Error = &errMsg
	m.UpdatedAt = time.Now()
}
