package entities

import (
	"time"

	"github.com/meetwise-team/meeting-insights/pkg/identifier"
)

// JobStatus represents the status of a processing job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"    // Accepted, not started
	JobStatusRunning   JobStatus = "running"   // Pipeline in progress
	JobStatusSucceeded JobStatus = "succeeded" // Meeting is ready
	JobStatusFailed    JobStatus = "failed"    // Pipeline failed fatally
)

// JobKind represents what a job does
type JobKind string

const (
	JobKindProcess   JobKind = "process"   // Full pipeline run
	JobKindReprocess JobKind = "reprocess" // Forced re-run clearing prior rows
)

// maxJobErrorLen bounds persisted error messages so a pathological
// model response cannot bloat the jobs table.
const maxJobErrorLen = 4000

// Job represents one processing run for a meeting
type Job struct {
	ID         string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	MeetingID  string     `json:"meeting_id" gorm:"type:varchar(64);not null;index"`
	Kind       JobKind    `json:"kind" gorm:"type:varchar(20);not null;default:'process'"`
	Status     JobStatus  `json:"status" gorm:"type:varchar(20);not null;index;default:'queued'"`
	Error      *string    `json:"error,omitempty" gorm:"type:text"`
	StartedAt  *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	FinishedAt *time.Time `json:"finished_at,omitempty" gorm:"type:timestamp"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// NewJob creates a new queued job
func NewJob(meetingID string, kind JobKind) *Job {
	return &Job{
		ID:        identifier.New("job"),
		MeetingID: meetingID,
		Kind:      kind,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsActive reports whether the job is still queued or running
func (j *Job) IsActive() bool {
	return j.Status == JobStatusQueued || j.Status == JobStatusRunning
}

// MarkRunning marks the job as started
func (j *Job) MarkRunning() {
	j.Status = JobStatusRunning
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkSucceeded marks the job as finished successfully
func (j *Job) MarkSucceeded() {
	j.Status = JobStatusSucceeded
	now := time.Now()
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed, truncating oversized messages
func (j *Job) MarkFailed(errMsg string) {
	if len(errMsg) > maxJobErrorLen {
		errMsg = errMsg[:maxJobErrorLen]
	}
	j.Status = JobStatusFailed
	j.Error = &errMsg
	now := time.Now()
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// ElapsedSeconds returns how long the job has run (or ran)
func (j *Job) ElapsedSeconds() float64 {
	if j.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if j.FinishedAt != nil {
		end = *j.FinishedAt
	}
	return end.Sub(*j.StartedAt).Seconds()
}

// JobEvent is one progress milestone emitted by a running job
type JobEvent struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	JobID     string    `json:"job_id" gorm:"type:varchar(64);not null;index"`
	Pct       int       `json:"pct" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (JobEvent) TableName() string {
	return "job_events"
}

// NewJobEvent creates a new progress event
func NewJobEvent(jobID string, pct int, message string) *JobEvent {
	return &JobEvent{
		ID:        identifier.New("evt"),
		JobID:     jobID,
		Pct:       pct,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
