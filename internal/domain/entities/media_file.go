package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// MediaFileKind distinguishes uploaded media from derived artifacts
type MediaFileKind string

const (
	MediaFileKindAudio    MediaFileKind = "audio"
	MediaFileKindDocument MediaFileKind = "document"
)

// MediaFile represents a stored file attached to a meeting. Path is a
// storage-backend locator: a disk path for local storage, an object key
// for MinIO.
type MediaFile struct {
	ID           string        `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID    string        `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Path         string        `json:"path" gorm:"type:text;not null"`
	OriginalName string        `json:"original_name" gorm:"type:varchar(512)"`
	MimeType     string        `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	SizeBytes    int64         `json:"size_bytes,omitempty"`
	Kind         MediaFileKind `json:"kind" gorm:"type:varchar(20);not null;default:'audio'"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MediaFile) TableName() string {
	return "files"
}

// NewMediaFile creates a new media file record
func NewMediaFile(meetingID, path, originalName string, kind MediaFileKind) *MediaFile {
	return &MediaFile{
		ID:           identifier.New("fil"),
		MeetingID:    meetingID,
		Path:         path,
		OriginalName: originalName,
		Kind:         kind,
		CreatedAt:    time.Now(),
	}
}
