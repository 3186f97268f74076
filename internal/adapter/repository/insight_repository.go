package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// segmentRepository implements the SegmentRepository interface
type segmentRepository struct {
	db *gorm.DB
}

// NewSegmentRepository creates a new transcript segment repository
func NewSegmentRepository(db *gorm.DB) repositories.SegmentRepository {
	return &segmentRepository{db: db}
}

// Replace swaps the meeting's segments for a fresh set in one transaction
func (r *segmentRepository) Replace(ctx context.Context, meetingID string, segments []*entities.TranscriptSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&entities.TranscriptSegment{}).Error; err != nil {
			return err
		}
		if len(segments) == 0 {
			return nil
		}
		return tx.CreateInBatches(segments, 500).Error
	})
}

func (r *segmentRepository) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.TranscriptSegment, error) {
	var segments []*entities.TranscriptSegment
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order(`start ASC, "end" ASC`).
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *segmentRepository) CountByMeeting(ctx context.Context, meetingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.TranscriptSegment{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	return count, err
}

// insightRepository implements the InsightRepository interface
type insightRepository struct {
	db *gorm.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *gorm.DB) repositories.InsightRepository {
	return &insightRepository{db: db}
}

// SaveSummary upserts the one-per-meeting summary row
func (r *insightRepository) SaveSummary(ctx context.Context, s *entities.Summary) error {
	topics, _ := json.Marshal(s.KeyTopics)
	decisions, _ := json.Marshal(s.Decisions)
	actions, _ := json.Marshal(s.ActionItems)
	risks, _ := json.Marshal(s.Risks)
	sentiment, _ := json.Marshal(s.SentimentOverview)

	q := `INSERT INTO summaries (id, meeting_id, summary, key_topics, decisions, action_items, risks, sentiment_overview, created_at, updated_at)
        VALUES (?, ?, ?, ?::jsonb, ?::jsonb, ?::jsonb, ?::jsonb, ?::jsonb, ?, ?)
        ON CONFLICT (meeting_id) DO UPDATE SET summary = EXCLUDED.summary, key_topics = EXCLUDED.key_topics, decisions = EXCLUDED.decisions, action_items = EXCLUDED.action_items, risks = EXCLUDED.risks, sentiment_overview = EXCLUDED.sentiment_overview, updated_at = NOW()`

	return r.db.WithContext(ctx).Exec(q,
		s.ID, s.MeetingID, s.SummaryText,
		string(topics), string(decisions), string(actions), string(risks), string(sentiment),
		time.Now(), time.Now(),
	).Error
}

func (r *insightRepository) GetSummaryByMeeting(ctx context.Context, meetingID string) (*entities.Summary, error) {
	row := r.db.WithContext(ctx).
		Raw(`SELECT id, meeting_id, summary, key_topics::text AS key_topics, decisions::text AS decisions, action_items::text AS action_items, risks::text AS risks, sentiment_overview::text AS sentiment_overview, created_at, updated_at FROM summaries WHERE meeting_id = ? LIMIT 1`, meetingID).
		Row()

	var res struct {
		ID                string
		MeetingID         string
		Summary           string
		KeyTopics         string
		Decisions         string
		ActionItems       string
		Risks             string
		SentimentOverview string
		CreatedAt         time.Time
		UpdatedAt         time.Time
	}
	if err := row.Scan(&res.ID, &res.MeetingID, &res.Summary, &res.KeyTopics, &res.Decisions, &res.ActionItems, &res.Risks, &res.SentimentOverview, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ucerrors.ErrNotFound
		}
		return nil, err
	}

	s := &entities.Summary{
		ID:          res.ID,
		MeetingID:   res.MeetingID,
		SummaryText: res.Summary,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
	_ = json.Unmarshal([]byte(res.KeyTopics), &s.KeyTopics)
	_ = json.Unmarshal([]byte(res.Decisions), &s.Decisions)
	_ = json.Unmarshal([]byte(res.ActionItems), &s.ActionItems)
	_ = json.Unmarshal([]byte(res.Risks), &s.Risks)
	if res.SentimentOverview != "" && res.SentimentOverview != "null" {
		var overview entities.SentimentOverview
		if err := json.Unmarshal([]byte(res.SentimentOverview), &overview); err == nil {
			s.SentimentOverview = &overview
		}
	}
	return s, nil
}

func (r *insightRepository) AppendDecisions(ctx context.Context, decisions []*entities.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(decisions, 100).Error
}

func (r *insightRepository) AppendActionItems(ctx context.Context, items []*entities.ActionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *insightRepository) AppendTopics(ctx context.Context, topics []*entities.TopicTag) error {
	if len(topics) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(topics, 100).Error
}

// ReplaceSentiments keeps the one-row-per-segment invariant across re-runs
func (r *insightRepository) ReplaceSentiments(ctx context.Context, meetingID string, sentiments []*entities.Sentiment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&entities.Sentiment{}).Error; err != nil {
			return err
		}
		if len(sentiments) == 0 {
			return nil
		}
		return tx.CreateInBatches(sentiments, 500).Error
	})
}

// ClearExploded removes decisions, action items and topics for a forced re-run
func (r *insightRepository) ClearExploded(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&entities.Decision{},
			&entities.ActionItem{},
			&entities.TopicTag{},
		} {
			if err := tx.Where("meeting_id = ?", meetingID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *insightRepository) ListDecisions(ctx context.Context, meetingID string) ([]*entities.Decision, error) {
	var out []*entities.Decision
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *insightRepository) ListActionItems(ctx context.Context, meetingID string) ([]*entities.ActionItem, error) {
	var out []*entities.ActionItem
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *insightRepository) ListTopics(ctx context.Context, meetingID string) ([]*entities.TopicTag, error) {
	var out []*entities.TopicTag
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *insightRepository) ListSentiments(ctx context.Context, meetingID string) ([]*entities.Sentiment, error) {
	var out []*entities.Sentiment
	err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("start ASC").Find(&out).Error
	return out, err
}
