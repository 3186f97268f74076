package insight

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

// Transcriber produces timed segments plus a detected language code
// from a local audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]ai.Segment, string, error)
}

// Diarizer returns speaker turns for a local audio file
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]ai.Turn, error)
}

// Generator is a chat completion backend. jsonResponse asks the model
// for a JSON object; callers still re-parse defensively.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonResponse bool, temperature float32) (string, error)
}

// ProgressFunc reports pipeline progress in percent with a stage message
type ProgressFunc func(pct int, message string)

// FlexFloat decodes numbers that models emit as numbers, numeric
// strings or junk. Unparseable values become NaN instead of failing
// the whole payload.
type FlexFloat float64

// UnmarshalJSON implements tolerant decoding
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = FlexFloat(math.NaN())
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = FlexFloat(math.NaN())
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// Seconds returns the value and whether it is usable
func (f *FlexFloat) Seconds() (float64, bool) {
	if f == nil || math.IsNaN(float64(*f)) {
		return 0, false
	}
	return float64(*f), true
}

// Item is one decision or action item as emitted by the model. Models
// sometimes return bare strings instead of objects; both decode.
type Item struct {
	Text          string     `json:"text"`
	Owner         *string    `json:"owner,omitempty"`
	DueDate       *string    `json:"due_date,omitempty"`
	Timestamp     *FlexFloat `json:"timestamp,omitempty"`
	TimestampHint *FlexFloat `json:"timestamp_hint,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string
func (it *Item) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		*it = Item{Text: text}
		return nil
	}
	type plain Item
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

// When returns the best known timestamp, preferring the explicit one
func (it Item) When() (float64, bool) {
	if v, ok := it.Timestamp.Seconds(); ok {
		return v, true
	}
	return it.TimestampHint.Seconds()
}

// Topic accepts either a bare string or a {label, confidence} object
type Topic struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// UnmarshalJSON accepts either form
func (t *Topic) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		*t = Topic{Label: label}
		return nil
	}
	type plain Topic
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Topic(p)
	return nil
}

// ChunkInsight is the extraction result for one transcript chunk
type ChunkInsight struct {
	SummaryBullets []string `json:"summary_bullets"`
	Decisions      []Item   `json:"decisions"`
	ActionItems    []Item   `json:"action_items"`
	Sentiment      string   `json:"sentiment,omitempty"`
	Speakers       []string `json:"speakers,omitempty"`
	Topics         []Topic  `json:"topics"`
}

// Highlight is one timeline moment inside the merged report
type Highlight struct {
	Timestamp *FlexFloat `json:"timestamp,omitempty"`
	Text      string     `json:"text"`
}

// Report is the merged meeting-level result across all chunks
type Report struct {
	Summary          string      `json:"summary"`
	OverallSentiment string      `json:"overall_sentiment,omitempty"`
	KeyTopics        []Topic     `json:"key_topics"`
	Decisions        []Item      `json:"decisions"`
	ActionItems      []Item      `json:"action_items"`
	Risks            []string    `json:"risks"`
	Highlights       []Highlight `json:"highlights,omitempty"`
}

// OverviewHighlight is one notable moment in the sentiment overview
type OverviewHighlight struct {
	Timestamp *FlexFloat `json:"timestamp,omitempty"`
	Text      string     `json:"text"`
	Polarity  string     `json:"polarity"`
	Reason    *string    `json:"reason,omitempty"`
}

// Overview is the meeting-level sentiment verdict
type Overview struct {
	Label      string              `json:"label"`
	Score      float64             `json:"score"`
	Vibe       string              `json:"vibe"`
	Rationale  string              `json:"rationale"`
	Highlights []OverviewHighlight `json:"highlights"`
}
