package insight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/search"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

type fakeMeetingRepo struct {
	meetings map[string]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: map[string]*entities.Meeting{}}
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id string) (*entities.Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return nil, ucerrors.ErrNotFound
	}
	return m, nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) Delete(_ context.Context, id string) error {
	delete(r.meetings, id)
	return nil
}

func (r *fakeMeetingRepo) List(_ context.Context, _ repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	var out []*entities.Meeting
	for _, m := range r.meetings {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMeetingRepo) FindWithoutSummary(_ context.Context) ([]*entities.Meeting, error) {
	return nil, nil
}

type fakeFileRepo struct {
	files []*entities.MediaFile
}

func (r *fakeFileRepo) Create(_ context.Context, f *entities.MediaFile) error {
	r.files = append(r.files, f)
	return nil
}

func (r *fakeFileRepo) FindByID(_ context.Context, id string) (*entities.MediaFile, error) {
	for _, f := range r.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, ucerrors.ErrNotFound
}

func (r *fakeFileRepo) ListByMeeting(_ context.Context, meetingID string) ([]*entities.MediaFile, error) {
	var out []*entities.MediaFile
	for _, f := range r.files {
		if f.MeetingID == meetingID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) LatestAudio(_ context.Context, meetingID string) (*entities.MediaFile, error) {
	for i := len(r.files) - 1; i >= 0; i-- {
		if r.files[i].MeetingID == meetingID && r.files[i].Kind == entities.MediaFileKindAudio {
			return r.files[i], nil
		}
	}
	return nil, ucerrors.ErrNotFound
}

type fakeSegmentRepo struct {
	byMeeting map[string][]*entities.TranscriptSegment
}

func newFakeSegmentRepo() *fakeSegmentRepo {
	return &fakeSegmentRepo{byMeeting: map[string][]*entities.TranscriptSegment{}}
}

func (r *fakeSegmentRepo) Replace(_ context.Context, meetingID string, segs []*entities.TranscriptSegment) error {
	r.byMeeting[meetingID] = segs
	return nil
}

func (r *fakeSegmentRepo) ListByMeeting(_ context.Context, meetingID string) ([]*entities.TranscriptSegment, error) {
	return r.byMeeting[meetingID], nil
}

func (r *fakeSegmentRepo) CountByMeeting(_ context.Context, meetingID string) (int64, error) {
	return int64(len(r.byMeeting[meetingID])), nil
}

type fakeInsightRepo struct {
	summaries  map[string]*entities.Summary
	sentiments map[string][]*entities.Sentiment
	decisions  map[string][]*entities.Decision
	actions    map[string][]*entities.ActionItem
	topics     map[string][]*entities.TopicTag
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{
		summaries:  map[string]*entities.Summary{},
		sentiments: map[string][]*entities.Sentiment{},
		decisions:  map[string][]*entities.Decision{},
		actions:    map[string][]*entities.ActionItem{},
		topics:     map[string][]*entities.TopicTag{},
	}
}

func (r *fakeInsightRepo) SaveSummary(_ context.Context, s *entities.Summary) error {
	r.summaries[s.MeetingID] = s
	return nil
}

func (r *fakeInsightRepo) GetSummaryByMeeting(_ context.Context, meetingID string) (*entities.Summary, error) {
	s, ok := r.summaries[meetingID]
	if !ok {
		return nil, ucerrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeInsightRepo) AppendDecisions(_ context.Context, rows []*entities.Decision) error {
	for _, d := range rows {
		r.decisions[d.MeetingID] = append(r.decisions[d.MeetingID], d)
	}
	return nil
}

func (r *fakeInsightRepo) AppendActionItems(_ context.Context, rows []*entities.ActionItem) error {
	for _, a := range rows {
		r.actions[a.MeetingID] = append(r.actions[a.MeetingID], a)
	}
	return nil
}

func (r *fakeInsightRepo) AppendTopics(_ context.Context, rows []*entities.TopicTag) error {
	for _, tag := range rows {
		r.topics[tag.MeetingID] = append(r.topics[tag.MeetingID], tag)
	}
	return nil
}

func (r *fakeInsightRepo) ReplaceSentiments(_ context.Context, meetingID string, rows []*entities.Sentiment) error {
	r.sentiments[meetingID] = rows
	return nil
}

func (r *fakeInsightRepo) ClearExploded(_ context.Context, meetingID string) error {
	delete(r.decisions, meetingID)
	delete(r.actions, meetingID)
	delete(r.topics, meetingID)
	return nil
}

func (r *fakeInsightRepo) ListDecisions(_ context.Context, meetingID string) ([]*entities.Decision, error) {
	return r.decisions[meetingID], nil
}

func (r *fakeInsightRepo) ListActionItems(_ context.Context, meetingID string) ([]*entities.ActionItem, error) {
	return r.actions[meetingID], nil
}

func (r *fakeInsightRepo) ListTopics(_ context.Context, meetingID string) ([]*entities.TopicTag, error) {
	return r.topics[meetingID], nil
}

func (r *fakeInsightRepo) ListSentiments(_ context.Context, meetingID string) ([]*entities.Sentiment, error) {
	return r.sentiments[meetingID], nil
}

// fakeStore treats locators as local paths and never touches disk
type fakeStore struct{}

func (fakeStore) Save(_ context.Context, meetingID, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	return meetingID + "/" + filename, nil
}

func (fakeStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (fakeStore) Localize(_ context.Context, locator string) (string, func(), error) {
	return locator, func() {}, nil
}

type fakeTranscriber struct {
	segments []ai.Segment
	language string
	err      error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) ([]ai.Segment, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.segments, f.language, nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(_ context.Context, _ string, _ bool, _ float32) (string, error) {
	return "", errors.New("model unreachable")
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 4)
		for j, r := range text {
			v[j%4] += float32(r % 7)
		}
		out[i] = v
	}
	return out, nil
}

func dialogueSegments(n int) []ai.Segment {
	topics := []string{"budget", "roadmap", "hiring", "deployment"}
	segs := make([]ai.Segment, 0, n)
	for i := 0; i < n; i++ {
		segs = append(segs, ai.Segment{
			Start: float64(i) * 5,
			End:   float64(i)*5 + 4.5,
			Text:  fmt.Sprintf("we will review the %s plan and send the update to everyone", topics[i%len(topics)]),
		})
	}
	return segs
}

func newTestPipeline(meetings *fakeMeetingRepo, files *fakeFileRepo, segments *fakeSegmentRepo, insights *fakeInsightRepo, tr Transcriber) *Pipeline {
	gen := failingGenerator{}
	return NewPipeline(
		meetings, files, segments, insights,
		fakeStore{},
		search.NewMemoryIndex(stubEmbedder{}),
		tr,
		NewNormalizer(nil, nil),
		NewExtractor(gen, nil),
		NewSentimentEngine(gen, nil),
		nil,
	)
}

func TestProcessMeeting_DegradedModelStillReady(t *testing.T) {
	meetings := newFakeMeetingRepo()
	files := &fakeFileRepo{}
	segments := newFakeSegmentRepo()
	insights := newFakeInsightRepo()

	meeting := entities.NewMeeting("weekly sync")
	meeting.MarkUploaded()
	_ = meetings.Create(context.Background(), meeting)
	_ = files.Create(context.Background(), entities.NewMediaFile(meeting.ID, "/tmp/a.wav", "a.wav", entities.MediaFileKindAudio))

	tr := &fakeTranscriber{segments: dialogueSegments(40), language: "en"}
	p := newTestPipeline(meetings, files, segments, insights, tr)

	var pcts []int
	err := p.ProcessMeeting(context.Background(), meeting.ID, func(pct int, _ string) {
		pcts = append(pcts, pct)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := meetings.FindByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusReady {
		t.Fatalf("expected ready, got %s (err=%v)", got.Status, got.Error)
	}
	if got.Language != "en" {
		t.Errorf("language not recorded: %q", got.Language)
	}
	if got.DurationSeconds < 190 {
		t.Errorf("duration should reflect the last segment end, got %v", got.DurationSeconds)
	}

	stored, _ := segments.ListByMeeting(context.Background(), meeting.ID)
	if len(stored) != 40 {
		t.Errorf("expected 40 stored segments, got %d", len(stored))
	}
	for _, s := range stored {
		if s.Speaker == "" {
			t.Fatalf("segment without speaker label: %+v", s)
		}
	}

	sum, err := insights.GetSummaryByMeeting(context.Background(), meeting.ID)
	if err != nil {
		t.Fatalf("summary row missing: %v", err)
	}
	if sum.SummaryText == "" {
		t.Errorf("summary text should never be empty")
	}
	if len(sum.KeyTopics) == 0 {
		t.Errorf("expected heuristic topics")
	}
	if sum.SentimentOverview == nil || sum.SentimentOverview.Label == "" {
		t.Errorf("sentiment overview missing: %+v", sum.SentimentOverview)
	}

	sents, _ := insights.ListSentiments(context.Background(), meeting.ID)
	if len(sents) != 40 {
		t.Errorf("expected one sentiment row per segment, got %d", len(sents))
	}
	tags, _ := insights.ListTopics(context.Background(), meeting.ID)
	if len(tags) == 0 {
		t.Errorf("expected topic rows")
	}

	if len(pcts) == 0 || pcts[len(pcts)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", pcts)
	}
	for i := 1; i < len(pcts); i++ {
		if pcts[i] < pcts[i-1] {
			t.Errorf("progress went backwards: %v", pcts)
		}
	}
}

func TestProcessMeeting_IndexedHitsCarrySpeakers(t *testing.T) {
	meetings := newFakeMeetingRepo()
	files := &fakeFileRepo{}
	segments := newFakeSegmentRepo()
	insights := newFakeInsightRepo()

	meeting := entities.NewMeeting("planning call")
	meeting.MarkUploaded()
	_ = meetings.Create(context.Background(), meeting)
	_ = files.Create(context.Background(), entities.NewMediaFile(meeting.ID, "/tmp/p.wav", "p.wav", entities.MediaFileKindAudio))

	gen := failingGenerator{}
	index := search.NewMemoryIndex(stubEmbedder{})
	p := NewPipeline(
		meetings, files, segments, insights,
		fakeStore{},
		index,
		&fakeTranscriber{segments: dialogueSegments(8), language: "en"},
		NewNormalizer(nil, nil),
		NewExtractor(gen, nil),
		NewSentimentEngine(gen, nil),
		nil,
	)

	if err := p.ProcessMeeting(context.Background(), meeting.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := index.Search(context.Background(), "budget", meeting.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected indexed hits for the processed meeting")
	}
	for _, h := range hits {
		if h.Speaker == "" {
			t.Errorf("indexed hit without speaker label: %+v", h)
		}
	}
}

func TestProcessMeeting_NoSegmentsFails(t *testing.T) {
	meetings := newFakeMeetingRepo()
	files := &fakeFileRepo{}
	segments := newFakeSegmentRepo()
	insights := newFakeInsightRepo()

	meeting := entities.NewMeeting("silent recording")
	_ = meetings.Create(context.Background(), meeting)
	_ = files.Create(context.Background(), entities.NewMediaFile(meeting.ID, "/tmp/s.wav", "s.wav", entities.MediaFileKindAudio))

	tr := &fakeTranscriber{segments: nil, language: "en"}
	p := newTestPipeline(meetings, files, segments, insights, tr)

	err := p.ProcessMeeting(context.Background(), meeting.ID, nil)
	if !errors.Is(err, ucerrors.ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", err)
	}

	got, _ := meetings.FindByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusError {
		t.Errorf("expected error status, got %s", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Errorf("error message should be recorded")
	}
}

func TestProcessMeeting_TranscriptionFailureMarksError(t *testing.T) {
	meetings := newFakeMeetingRepo()
	files := &fakeFileRepo{}
	segments := newFakeSegmentRepo()
	insights := newFakeInsightRepo()

	meeting := entities.NewMeeting("broken upload")
	_ = meetings.Create(context.Background(), meeting)
	_ = files.Create(context.Background(), entities.NewMediaFile(meeting.ID, "/tmp/b.wav", "b.wav", entities.MediaFileKindAudio))

	tr := &fakeTranscriber{err: errors.New("decode failed")}
	p := newTestPipeline(meetings, files, segments, insights, tr)

	if err := p.ProcessMeeting(context.Background(), meeting.ID, nil); err == nil {
		t.Fatal("expected an error")
	}
	got, _ := meetings.FindByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusError {
		t.Errorf("expected error status, got %s", got.Status)
	}
}

func TestProcessMeeting_UnknownMeeting(t *testing.T) {
	p := newTestPipeline(newFakeMeetingRepo(), &fakeFileRepo{}, newFakeSegmentRepo(), newFakeInsightRepo(), &fakeTranscriber{})
	if err := p.ProcessMeeting(context.Background(), "mtg_missing", nil); !errors.Is(err, ucerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
