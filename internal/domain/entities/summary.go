package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// SummaryItem is one merged decision or action item inside a summary
type SummaryItem struct {
	Text      string   `json:"text"`
	Owner     *string  `json:"owner,omitempty"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// SentimentHighlight is one notable moment inside the sentiment overview
type SentimentHighlight struct {
	Timestamp *float64 `json:"timestamp,omitempty"`
	Text      string   `json:"text"`
	Polarity  string   `json:"polarity"`
	Reason    *string  `json:"reason,omitempty"`
}

// SentimentOverview captures meeting-level tone plus notable moments
type SentimentOverview struct {
	Label      string               `json:"label"`
	Score      float64              `json:"score"`
	Vibe       string               `json:"vibe,omitempty"`
	Rationale  string               `json:"rationale,omitempty"`
	Highlights []SentimentHighlight `json:"highlights,omitempty"`
}

// Summary is the one-per-meeting insight record. List fields are stored
// as jsonb columns; exploded per-row copies live in their own tables.
type Summary struct {
	ID                string             `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID         string             `json:"meeting_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	SummaryText       string             `json:"summary" gorm:"column:summary;type:text;not null"`
	KeyTopics         []string           `json:"key_topics,omitempty" gorm:"type:jsonb;serializer:json"`
	Decisions         []SummaryItem      `json:"decisions,omitempty" gorm:"type:jsonb;serializer:json"`
	ActionItems       []SummaryItem      `json:"action_items,omitempty" gorm:"type:jsonb;serializer:json"`
	Risks             []string           `json:"risks,omitempty" gorm:"type:jsonb;serializer:json"`
	SentimentOverview *SentimentOverview `json:"sentiment_overview,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt         time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}

// NewSummary creates a new summary for a meeting
func NewSummary(meetingID string) *Summary {
	return &Summary{
		ID:        identifier.New("sum"),
		MeetingID: meetingID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
