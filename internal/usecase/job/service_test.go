package job

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/cache"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	"github.com/meetwise-team/meeting-insights/internal/usecase/insight"
)

type fakeJobRepo struct {
	mu       sync.Mutex
	jobs     map[string]*entities.Job
	events   map[string][]*entities.JobEvent
	terminal chan entities.JobStatus
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:     map[string]*entities.Job{},
		events:   map[string][]*entities.JobEvent{},
		terminal: make(chan entities.JobStatus, 8),
	}
}

func (r *fakeJobRepo) Create(_ context.Context, j *entities.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Update(_ context.Context, j *entities.Job) error {
	r.mu.Lock()
	cp := *j
	r.jobs[j.ID] = &cp
	r.mu.Unlock()
	if !j.IsActive() {
		r.terminal <- j.Status
	}
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id string) (*entities.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, ucerrors.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) ListByMeeting(_ context.Context, meetingID string) ([]*entities.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Job
	for _, j := range r.jobs {
		if j.MeetingID == meetingID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindActiveByMeeting(_ context.Context, meetingID string) (*entities.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.MeetingID == meetingID && j.IsActive() {
			cp := *j
			return &cp, nil
		}
	}
	return nil, ucerrors.ErrNotFound
}

func (r *fakeJobRepo) AppendEvent(_ context.Context, ev *entities.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.JobID] = append(r.events[ev.JobID], ev)
	return nil
}

func (r *fakeJobRepo) LatestEvent(_ context.Context, jobID string) (*entities.JobEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.events[jobID]
	if len(evs) == 0 {
		return nil, ucerrors.ErrNotFound
	}
	return evs[len(evs)-1], nil
}

type stubMeetingRepo struct {
	meetings map[string]*entities.Meeting
}

func (r *stubMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *stubMeetingRepo) FindByID(_ context.Context, id string) (*entities.Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return nil, ucerrors.ErrNotFound
	}
	return m, nil
}

func (r *stubMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *stubMeetingRepo) Delete(_ context.Context, id string) error {
	delete(r.meetings, id)
	return nil
}

func (r *stubMeetingRepo) List(_ context.Context, f repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	var all []*entities.Meeting
	for _, m := range r.meetings {
		all = append(all, m)
	}
	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], total, nil
}

func (r *stubMeetingRepo) FindWithoutSummary(_ context.Context) ([]*entities.Meeting, error) {
	var out []*entities.Meeting
	for _, m := range r.meetings {
		if m.Status == entities.MeetingStatusUploaded {
			out = append(out, m)
		}
	}
	return out, nil
}

type scriptedRunner struct {
	err      error
	progress []int
	mu       sync.Mutex
}

func (f *scriptedRunner) ProcessMeeting(_ context.Context, _ string, progress insight.ProgressFunc) error {
	for _, pct := range []int{5, 55, 100} {
		progress(pct, "stage")
		f.mu.Lock()
		f.progress = append(f.progress, pct)
		f.mu.Unlock()
	}
	return f.err
}

func waitTerminal(t *testing.T, repo *fakeJobRepo) entities.JobStatus {
	t.Helper()
	select {
	case st := <-repo.terminal:
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("job did not reach a terminal state")
		return ""
	}
}

func newTestService(runner Runner) (*Service, *fakeJobRepo, *stubMeetingRepo, cache.ProgressCache) {
	jobs := newFakeJobRepo()
	meetings := &stubMeetingRepo{meetings: map[string]*entities.Meeting{}}
	progress := cache.NewMemoryProgressCache()
	return NewService(jobs, meetings, runner, progress, nil), jobs, meetings, progress
}

func TestEnqueue_RunsToSuccess(t *testing.T) {
	svc, jobs, meetings, progress := newTestService(&scriptedRunner{})
	m := entities.NewMeeting("sync")
	m.MarkUploaded()
	_ = meetings.Create(context.Background(), m)

	job, err := svc.Enqueue(context.Background(), m.ID, entities.JobKindProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := waitTerminal(t, jobs); st != entities.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s", st)
	}

	p, err := progress.GetProgress(context.Background(), job.ID)
	if err != nil || p == nil {
		t.Fatalf("progress snapshot missing: %v %v", p, err)
	}
	if p.Pct != 100 {
		t.Errorf("expected final pct 100, got %d", p.Pct)
	}

	stored, _ := jobs.FindByID(context.Background(), job.ID)
	if stored.StartedAt == nil || stored.FinishedAt == nil {
		t.Errorf("timestamps not recorded: %+v", stored)
	}
}

func TestEnqueue_UnknownMeeting(t *testing.T) {
	svc, _, _, _ := newTestService(&scriptedRunner{})
	if _, err := svc.Enqueue(context.Background(), "mtg_nope", entities.JobKindProcess); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEnqueue_ActiveJobBlocks(t *testing.T) {
	svc, jobs, meetings, _ := newTestService(&scriptedRunner{})
	m := entities.NewMeeting("sync")
	_ = meetings.Create(context.Background(), m)

	// plant an active job directly so the goroutine never finishes it
	active := entities.NewJob(m.ID, entities.JobKindProcess)
	active.MarkRunning()
	_ = jobs.Create(context.Background(), active)

	if _, err := svc.Enqueue(context.Background(), m.ID, entities.JobKindProcess); !errors.Is(err, ucerrors.ErrJobAlreadyActive) {
		t.Errorf("expected ErrJobAlreadyActive, got %v", err)
	}
}

func TestRun_FailureTruncatesError(t *testing.T) {
	long := strings.Repeat("x", 6000)
	svc, jobs, meetings, _ := newTestService(&scriptedRunner{err: errors.New(long)})
	m := entities.NewMeeting("sync")
	_ = meetings.Create(context.Background(), m)

	job, err := svc.Enqueue(context.Background(), m.ID, entities.JobKindProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := waitTerminal(t, jobs); st != entities.JobStatusFailed {
		t.Fatalf("expected failed, got %s", st)
	}

	stored, _ := jobs.FindByID(context.Background(), job.ID)
	if stored.Error == nil {
		t.Fatal("error message missing")
	}
	if len(*stored.Error) != 4000 {
		t.Errorf("expected error truncated to 4000 chars, got %d", len(*stored.Error))
	}
}

func TestStatus_FallsBackToEvents(t *testing.T) {
	svc, jobs, meetings, progress := newTestService(&scriptedRunner{})
	m := entities.NewMeeting("sync")
	_ = meetings.Create(context.Background(), m)

	job, err := svc.Enqueue(context.Background(), m.ID, entities.JobKindProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTerminal(t, jobs)

	// simulate a cache wipe
	_ = progress.DeleteProgress(context.Background(), job.ID)

	_, p, err := svc.Status(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.Pct != 100 {
		t.Errorf("expected event fallback with pct 100, got %+v", p)
	}
}

func TestReprocessAll_SkipsPendingMeetings(t *testing.T) {
	svc, jobs, meetings, _ := newTestService(&scriptedRunner{})
	ready := entities.NewMeeting("done")
	ready.MarkReady("en", 60)
	pending := entities.NewMeeting("no media yet")
	_ = meetings.Create(context.Background(), ready)
	_ = meetings.Create(context.Background(), pending)

	started, err := svc.ReprocessAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started != 1 {
		t.Errorf("expected 1 reprocessed meeting, got %d", started)
	}
	waitTerminal(t, jobs)
}

func TestBackfill_EnqueuesUnprocessedMeetings(t *testing.T) {
	svc, jobs, meetings, _ := newTestService(&scriptedRunner{})
	ready := entities.NewMeeting("done")
	ready.MarkReady("en", 60)
	pending := entities.NewMeeting("waiting")
	pending.MarkUploaded()
	_ = meetings.Create(context.Background(), ready)
	_ = meetings.Create(context.Background(), pending)

	started, err := svc.Backfill(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started != 1 {
		t.Errorf("expected 1 backfilled meeting, got %d", started)
	}
	waitTerminal(t, jobs)
}
