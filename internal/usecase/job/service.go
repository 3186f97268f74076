package job

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/cache"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	"github.com/meetwise-team/meeting-insights/internal/usecase/insight"
)

// Runner is the processing pipeline the job service drives
type Runner interface {
	ProcessMeeting(ctx context.Context, meetingID string, progress insight.ProgressFunc) error
}

// Service tracks processing jobs: one active job per meeting, progress
// snapshots in the cache and milestones in the job_events table.
type Service struct {
	jobs     repositories.JobRepository
	meetings repositories.MeetingRepository
	runner   Runner
	progress cache.ProgressCache
	logger   *zap.Logger
}

// NewService creates a job service
func NewService(
	jobs repositories.JobRepository,
	meetings repositories.MeetingRepository,
	runner Runner,
	progress cache.ProgressCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		jobs:     jobs,
		meetings: meetings,
		runner:   runner,
		progress: progress,
		logger:   logger,
	}
}

// Enqueue creates a queued job for the meeting and starts the pipeline
// in the background. A meeting can only have one active job.
func (s *Service) Enqueue(ctx context.Context, meetingID string, kind entities.JobKind) (*entities.Job, error) {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}

	active, err := s.jobs.FindActiveByMeeting(ctx, meetingID)
	if err != nil && !errors.Is(err, ucerrors.ErrNotFound) {
		return nil, err
	}
	if active != nil {
		return nil, ucerrors.ErrJobAlreadyActive
	}

	job := entities.NewJob(meetingID, kind)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("⏳ Job queued",
			zap.String("job_id", job.ID),
			zap.String("meeting_id", meetingID),
			zap.String("kind", string(kind)))
	}

	go s.run(job)
	return job, nil
}

// run drives one job to completion. It uses a background context so an
// HTTP request cancellation does not kill a pipeline mid-write.
func (s *Service) run(job *entities.Job) {
	ctx := context.Background()

	job.MarkRunning()
	if err := s.jobs.Update(ctx, job); err != nil && s.logger != nil {
		s.logger.Error("Failed to mark job running", zap.String("job_id", job.ID), zap.Error(err))
	}

	progress := func(pct int, message string) {
		if err := s.progress.SetProgress(ctx, job.ID, pct, message); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Progress cache write failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		if err := s.jobs.AppendEvent(ctx, entities.NewJobEvent(job.ID, pct, message)); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Progress event write failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	if err := s.runner.ProcessMeeting(ctx, job.MeetingID, progress); err != nil {
		job.MarkFailed(err.Error())
		if s.logger != nil {
			s.logger.Error("⚠️ Job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	} else {
		job.MarkSucceeded()
		if s.logger != nil {
			s.logger.Info("✅ Job succeeded",
				zap.String("job_id", job.ID),
				zap.Float64("elapsed_seconds", job.ElapsedSeconds()))
		}
	}
	if err := s.jobs.Update(ctx, job); err != nil && s.logger != nil {
		s.logger.Error("Failed to persist job result", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// Status returns the job plus its latest progress snapshot. The cache
// is preferred; the job_events table is the fallback after a cache
// wipe or restart.
func (s *Service) Status(ctx context.Context, jobID string) (*entities.Job, *cache.Progress, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.progress.GetProgress(ctx, jobID)
	if err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Progress cache read failed", zap.String("job_id", jobID), zap.Error(err))
	}
	if p == nil {
		if ev, err := s.jobs.LatestEvent(ctx, jobID); err == nil && ev != nil {
			p = &cache.Progress{Pct: ev.Pct, Message: ev.Message, UpdatedAt: ev.CreatedAt}
		}
	}
	return job, p, nil
}

// ListByMeeting returns the meeting's jobs, newest first
func (s *Service) ListByMeeting(ctx context.Context, meetingID string) ([]*entities.Job, error) {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.jobs.ListByMeeting(ctx, meetingID)
}

// ReprocessAll enqueues a reprocess job for every meeting that has
// media, skipping meetings with an active job. Returns how many jobs
// were started.
func (s *Service) ReprocessAll(ctx context.Context) (int, error) {
	started := 0
	offset := 0
	for {
		meetings, _, err := s.meetings.List(ctx, repositories.MeetingFilters{Limit: 200, Offset: offset})
		if err != nil {
			return started, err
		}
		if len(meetings) == 0 {
			break
		}
		offset += len(meetings)

		for _, m := range meetings {
			if m.Status == entities.MeetingStatusPending {
				continue
			}
			if _, err := s.Enqueue(ctx, m.ID, entities.JobKindReprocess); err != nil {
				if errors.Is(err, ucerrors.ErrJobAlreadyActive) {
					continue
				}
				if s.logger != nil {
					s.logger.Warn("⚠️ Reprocess enqueue failed", zap.String("meeting_id", m.ID), zap.Error(err))
				}
				continue
			}
			started++
		}
	}
	if s.logger != nil {
		s.logger.Info("🔄 Reprocess started", zap.Int("meetings", started))
	}
	return started, nil
}

// Backfill enqueues processing for meetings that have media but no
// summary yet. Called once at startup so crashed runs are retried.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	meetings, err := s.meetings.FindWithoutSummary(ctx)
	if err != nil {
		return 0, err
	}

	started := 0
	for _, m := range meetings {
		if _, err := s.Enqueue(ctx, m.ID, entities.JobKindProcess); err != nil {
			if errors.Is(err, ucerrors.ErrJobAlreadyActive) {
				continue
			}
			if s.logger != nil {
				s.logger.Warn("⚠️ Backfill enqueue failed", zap.String("meeting_id", m.ID), zap.Error(err))
			}
			continue
		}
		started++
	}
	if s.logger != nil && started > 0 {
		s.logger.Info("🔄 Backfill started", zap.Int("meetings", started))
	}
	return started, nil
}
