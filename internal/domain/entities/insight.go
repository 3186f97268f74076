package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// Decision is an exploded row for one merged decision
type Decision struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID string    `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Owner     *string   `json:"owner,omitempty" gorm:"type:varchar(128)"`
	Timestamp *float64  `json:"timestamp,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Decision) TableName() string {
	return "decisions"
}

// NewDecision creates a new decision row
func NewDecision(meetingID string, item SummaryItem) *Decision {
	return &Decision{
		ID:        identifier.New("dec"),
		MeetingID: meetingID,
		Text:      item.Text,
		Owner:     item.Owner,
		Timestamp: item.Timestamp,
		CreatedAt: time.Now(),
	}
}

// ActionItem is an exploded row for one merged action item
type ActionItem struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID string    `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Owner     *string   `json:"owner,omitempty" gorm:"type:varchar(128)"`
	Timestamp *float64  `json:"timestamp,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ActionItem) TableName() string {
	return "action_items"
}

// NewActionItem creates a new action item row
func NewActionItem(meetingID string, item SummaryItem) *ActionItem {
	return &ActionItem{
		ID:        identifier.New("act"),
		MeetingID: meetingID,
		Text:      item.Text,
		Owner:     item.Owner,
		Timestamp: item.Timestamp,
		CreatedAt: time.Now(),
	}
}

// TopicTag is an exploded row for one key topic
type TopicTag struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID string    `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Topic     string    `json:"topic" gorm:"type:varchar(256);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TopicTag) TableName() string {
	return "topics"
}

// NewTopicTag creates a new topic row
func NewTopicTag(meetingID, topic string) *TopicTag {
	return &TopicTag{
		ID:        identifier.New("top"),
		MeetingID: meetingID,
		Topic:     topic,
		CreatedAt: time.Now(),
	}
}

// SentimentLabel classifies a segment's polarity score
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Sentiment is one per-segment polarity row. Exactly one row exists per
// transcript segment of a processed meeting.
type Sentiment struct {
	ID        string         `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID string         `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	SegmentID string         `json:"segment_id" gorm:"type:varchar(64);not null;index"`
	Speaker   string         `json:"speaker,omitempty" gorm:"type:varchar(64)"`
	Start     float64        `json:"start"`
	End       float64        `json:"end"`
	Score     float64        `json:"score"`
	Label     SentimentLabel `json:"label" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Sentiment) TableName() string {
	return "sentiments"
}

// NewSentiment creates a new per-segment sentiment row
func NewSentiment(seg *TranscriptSegment, score float64, label SentimentLabel) *Sentiment {
	return &Sentiment{
		ID:        identifier.New("sen"),
		MeetingID: seg.MeetingID,
		SegmentID: seg.ID,
		Speaker:   seg.Speaker,
		Start:     seg.Start,
		End:       seg.End,
		Score:     score,
		Label:     label,
		CreatedAt: time.Now(),
	}
}
