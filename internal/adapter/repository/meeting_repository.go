package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&meeting).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Update updates an existing meeting
func (r *meetingRepository) Update(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

// Delete removes a meeting and all derived rows
func (r *meetingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&entities.Sentiment{},
			&entities.Decision{},
			&entities.ActionItem{},
			&entities.TopicTag{},
			&entities.Summary{},
			&entities.TranscriptSegment{},
			&entities.MediaFile{},
		} {
			if err := tx.Where("meeting_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entities.Meeting{}).Error
	})
}

// List retrieves meetings with filters and a total count
func (r *meetingRepository) List(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	q := r.db.WithContext(ctx).Model(&entities.Meeting{})
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		q = q.Offset(filters.Offset)
	}

	var meetings []*entities.Meeting
	if err := q.Order("created_at DESC").Find(&meetings).Error; err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

// FindWithoutSummary retrieves meetings with media but no summary row
func (r *meetingRepository) FindWithoutSummary(ctx context.Context) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	err := r.db.WithContext(ctx).
		Raw(`SELECT m.* FROM meetings m
		     LEFT JOIN summaries s ON s.meeting_id = m.id
		     WHERE s.id IS NULL AND m.status IN ('uploaded', 'error')
		     ORDER BY m.created_at ASC`).
		Scan(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

// fileRepository implements the FileRepository interface
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new media file repository
func NewFileRepository(db *gorm.DB) repositories.FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *entities.MediaFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id string) (*entities.MediaFile, error) {
	var file entities.MediaFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.MediaFile, error) {
	var files []*entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) LatestAudio(ctx context.Context, meetingID string) (*entities.MediaFile, error) {
	var file entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND kind = ?", meetingID, entities.MediaFileKindAudio).
		Order("created_at DESC").
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}
