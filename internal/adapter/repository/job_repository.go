package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// jobRepository implements the JobRepository interface
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) repositories.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *entities.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) Update(ctx context.Context, job *entities.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id string) (*entities.Job, error) {
	var job entities.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.Job, error) {
	var jobs []*entities.Job
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) FindActiveByMeeting(ctx context.Context, meetingID string) (*entities.Job, error) {
	var job entities.Job
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND status IN ?", meetingID, []entities.JobStatus{entities.JobStatusQueued, entities.JobStatusRunning}).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) AppendEvent(ctx context.Context, event *entities.JobEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *jobRepository) LatestEvent(ctx context.Context, jobID string) (*entities.JobEvent, error) {
	var event entities.JobEvent
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC, pct DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ucerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
