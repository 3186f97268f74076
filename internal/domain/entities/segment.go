package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// TranscriptSegment is one contiguous speech span of a meeting transcript.
// Start and End are seconds from the beginning of the recording.
type TranscriptSegment struct {
	ID         string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID  string    `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Start      float64   `json:"start" gorm:"not null"`
	End        float64   `json:"end" gorm:"not null"`
	Speaker    string    `json:"speaker,omitempty" gorm:"type:varchar(64)"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Language   string    `json:"language,omitempty" gorm:"type:varchar(20)"`
	Confidence float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptSegment) TableName() string {
	return "segments"
}

// NewTranscriptSegment creates a new transcript segment
func NewTranscriptSegment(meetingID string, start, end float64, speaker, text string) *TranscriptSegment {
	return &TranscriptSegment{
		ID:        identifier.New("seg"),
		MeetingID: meetingID,
		Start:     start,
		End:       end,
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Duration returns the segment length in seconds
func (s *TranscriptSegment) Duration() float64 {
	d := s.End - s.Start
	if d < 0 {
		return 0
	}
	return d
}
