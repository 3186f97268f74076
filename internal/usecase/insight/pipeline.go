package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/internal/domain/repositories"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/search"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/storage"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

const (
	// pipelineChunkChars keeps prompts small enough for local models
	pipelineChunkChars = 3000

	// maxPipelineChunks bounds total model calls per meeting
	maxPipelineChunks = 10
)

// Pipeline runs the full processing flow for one meeting: transcribe,
// label speakers, index, score sentiment, extract insights, persist.
type Pipeline struct {
	meetings    repositories.MeetingRepository
	files       repositories.FileRepository
	segments    repositories.SegmentRepository
	insights    repositories.InsightRepository
	store       storage.Store
	index       search.Index
	transcriber Transcriber
	normalizer  *Normalizer
	extractor   *Extractor
	sentiment   *SentimentEngine
	logger      *zap.Logger
}

// NewPipeline wires the processing pipeline
func NewPipeline(
	meetings repositories.MeetingRepository,
	files repositories.FileRepository,
	segments repositories.SegmentRepository,
	insights repositories.InsightRepository,
	store storage.Store,
	index search.Index,
	transcriber Transcriber,
	normalizer *Normalizer,
	extractor *Extractor,
	sentiment *SentimentEngine,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		meetings:    meetings,
		files:       files,
		segments:    segments,
		insights:    insights,
		store:       store,
		index:       index,
		transcriber: transcriber,
		normalizer:  normalizer,
		extractor:   extractor,
		sentiment:   sentiment,
		logger:      logger,
	}
}

// ProcessMeeting runs the pipeline for one meeting. Model and index
// failures degrade to heuristics; transcription and persistence
// failures mark the meeting as errored and are returned.
func (p *Pipeline) ProcessMeeting(ctx context.Context, meetingID string, progress ProgressFunc) error {
	lastPct := -1
	report := func(pct int, message string) {
		if progress == nil || pct < lastPct {
			return
		}
		lastPct = pct
		progress(pct, message)
	}

	meeting, err := p.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Info("🔄 Processing meeting", zap.String("meeting_id", meetingID))
	}
	report(5, "starting")

	aiSegs, language, err := p.transcribeAll(ctx, meeting, report)
	if err != nil {
		return p.fail(ctx, meeting, err)
	}

	AssignSpeakersIfMissing(aiSegs)
	if len(aiSegs) == 0 {
		return p.fail(ctx, meeting, fmt.Errorf("%w: no segments produced; input may be silent or unsupported", ucerrors.ErrNoSegments))
	}

	duration := 0.0
	for _, s := range aiSegs {
		if s.End > duration {
			duration = s.End
		}
	}

	entSegs := make([]*entities.TranscriptSegment, 0, len(aiSegs))
	for _, s := range aiSegs {
		seg := entities.NewTranscriptSegment(meetingID, s.Start, s.End, s.Speaker, s.Text)
		seg.Language = language
		seg.Confidence = s.Confidence
		entSegs = append(entSegs, seg)
	}
	if err := p.segments.Replace(ctx, meetingID, entSegs); err != nil {
		return p.fail(ctx, meeting, err)
	}

	entries := make([]search.Entry, 0, len(entSegs))
	for _, seg := range entSegs {
		entries = append(entries, search.Entry{
			MeetingID: meetingID,
			SegmentID: seg.ID,
			Speaker:   seg.Speaker,
			Start:     seg.Start,
			End:       seg.End,
			Text:      seg.Text,
		})
	}
	if err := p.index.Add(ctx, entries); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Indexing failed, search will miss this meeting", zap.Error(err))
		}
	}
	report(55, "indexed")

	rows := make([]*entities.Sentiment, 0, len(entSegs))
	scores := make([]float64, 0, len(entSegs))
	for _, seg := range entSegs {
		score := ScoreSegment(seg.Text)
		rows = append(rows, entities.NewSentiment(seg, score, LabelFromScore(score)))
		scores = append(scores, score)
	}
	if err := p.insights.ReplaceSentiments(ctx, meetingID, rows); err != nil {
		return p.fail(ctx, meeting, err)
	}
	provisional := AggregateOverview(scores)
	report(65, "sentiment analyzed")

	chunks := ChunkSegments(aiSegs, pipelineChunkChars)
	if len(chunks) > maxPipelineChunks {
		chunks = chunks[:maxPipelineChunks]
	}

	summary, err := p.buildSummary(ctx, meetingID, chunks, aiSegs, provisional)
	if err != nil {
		return p.fail(ctx, meeting, err)
	}
	report(75, "summary + topics done")

	overview := p.sentiment.Overview(ctx, chunks, aiSegs)
	summary.SentimentOverview = overviewToEntity(overview)
	if err := p.insights.SaveSummary(ctx, summary); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Saving sentiment overview failed", zap.Error(err))
		}
	}
	report(95, "sentiment done")

	meeting.MarkReady(language, duration)
	if err := p.meetings.Update(ctx, meeting); err != nil {
		return err
	}
	report(100, "completed")
	if p.logger != nil {
		p.logger.Info("✅ Meeting processed",
			zap.String("meeting_id", meetingID),
			zap.Int("segments", len(entSegs)),
			zap.Float64("duration_seconds", duration))
	}
	return nil
}

// transcribeAll localizes and transcribes every audio file of the
// meeting, normalizing speakers per file.
func (p *Pipeline) transcribeAll(ctx context.Context, meeting *entities.Meeting, report func(int, string)) ([]ai.Segment, string, error) {
	mediaFiles, err := p.files.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, "", err
	}
	var audio []*entities.MediaFile
	for _, f := range mediaFiles {
		if f.Kind == entities.MediaFileKindAudio {
			audio = append(audio, f)
		}
	}

	var all []ai.Segment
	language := ""
	for i, f := range audio {
		segs, lang, err := p.transcribeOne(ctx, f)
		if err != nil {
			return nil, "", fmt.Errorf("transcribe %s: %w", f.OriginalName, err)
		}
		all = append(all, segs...)
		if language == "" {
			language = lang
		}

		pct := 10 + 30*(i+1)/len(audio)
		if pct > 40 {
			pct = 40
		}
		report(pct, "transcribed")
	}
	return all, language, nil
}

func (p *Pipeline) transcribeOne(ctx context.Context, f *entities.MediaFile) ([]ai.Segment, string, error) {
	path, cleanup, err := p.store.Localize(ctx, f.Path)
	if err != nil {
		return nil, "", err
	}
	defer cleanup()

	if p.logger != nil {
		p.logger.Info("🎙️ Transcribing file", zap.String("file_id", f.ID), zap.String("name", f.OriginalName))
	}
	segs, lang, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, "", err
	}
	p.normalizer.Normalize(ctx, path, segs)
	return segs, lang, nil
}

// buildSummary runs the extraction flow and upserts the summary row
// plus exploded decision, action item and topic rows. Model failures
// degrade to heuristics so a summary always exists.
func (p *Pipeline) buildSummary(ctx context.Context, meetingID string, chunks []string, segs []ai.Segment, provisional Overview) (*entities.Summary, error) {
	parts := p.extractor.ExtractChunks(ctx, chunks)
	merged := p.extractor.Merge(ctx, parts)

	decs := merged.Decisions
	acts := merged.ActionItems
	topics := merged.KeyTopics
	if d2, a2, t2, err := p.extractor.ExtractLists(ctx, chunks); err == nil {
		if len(a2) > 0 {
			acts = a2
		}
		if len(d2) > 0 {
			decs = d2
		}
		if len(t2) > 0 {
			topics = t2
		}
	}

	acts = MergeDuplicates(CleanItems(acts))
	decs = MergeDuplicates(CleanItems(decs))
	if ra, rd, err := p.extractor.Refine(ctx, chunks, acts, decs); err == nil {
		if len(ra) > 0 {
			acts = MergeDuplicates(CleanItems(ra))
		}
		if len(rd) > 0 {
			decs = MergeDuplicates(CleanItems(rd))
		}
	}
	topicLabels := UniqueTopics(topics)

	summaryText := strings.TrimSpace(merged.Summary)
	if summaryText == "" {
		summaryText = SimpleSummary(segs, 8)
	}
	if len(topicLabels) == 0 {
		topicLabels = SimpleTopics(segs, 6)
	}
	if len(acts) == 0 || len(decs) == 0 {
		ha, hd := HeuristicActionsDecisions(segs)
		if len(acts) == 0 {
			acts = ha
		}
		if len(decs) == 0 {
			decs = hd
		}
	}

	summary := entities.NewSummary(meetingID)
	summary.SummaryText = summaryText
	summary.KeyTopics = topicLabels
	summary.Decisions = toSummaryItems(decs)
	summary.ActionItems = toSummaryItems(acts)
	summary.Risks = merged.Risks
	summary.SentimentOverview = overviewToEntity(provisional)
	if err := p.insights.SaveSummary(ctx, summary); err != nil {
		return nil, err
	}

	if err := p.insights.ClearExploded(ctx, meetingID); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Clearing exploded rows failed", zap.Error(err))
		}
	}
	decRows := make([]*entities.Decision, 0, len(decs))
	for _, item := range summary.Decisions {
		decRows = append(decRows, entities.NewDecision(meetingID, item))
	}
	actRows := make([]*entities.ActionItem, 0, len(acts))
	for _, item := range summary.ActionItems {
		actRows = append(actRows, entities.NewActionItem(meetingID, item))
	}
	topicRows := make([]*entities.TopicTag, 0, len(topicLabels))
	for _, label := range topicLabels {
		topicRows = append(topicRows, entities.NewTopicTag(meetingID, label))
	}
	if err := p.insights.AppendDecisions(ctx, decRows); err != nil && p.logger != nil {
		p.logger.Warn("⚠️ Persisting decisions failed", zap.Error(err))
	}
	if err := p.insights.AppendActionItems(ctx, actRows); err != nil && p.logger != nil {
		p.logger.Warn("⚠️ Persisting action items failed", zap.Error(err))
	}
	if err := p.insights.AppendTopics(ctx, topicRows); err != nil && p.logger != nil {
		p.logger.Warn("⚠️ Persisting topics failed", zap.Error(err))
	}
	return summary, nil
}

func toSummaryItems(items []Item) []entities.SummaryItem {
	out := make([]entities.SummaryItem, 0, len(items))
	for _, it := range items {
		si := entities.SummaryItem{Text: it.Text, Owner: it.Owner}
		if ts, ok := it.When(); ok {
			v := ts
			si.Timestamp = &v
		}
		out = append(out, si)
	}
	return out
}

func overviewToEntity(ov Overview) *entities.SentimentOverview {
	ent := &entities.SentimentOverview{
		Label:     ov.Label,
		Score:     ov.Score,
		Vibe:      ov.Vibe,
		Rationale: ov.Rationale,
	}
	for _, h := range ov.Highlights {
		eh := entities.SentimentHighlight{Text: h.Text, Polarity: h.Polarity, Reason: h.Reason}
		if ts, ok := h.Timestamp.Seconds(); ok {
			v := ts
			eh.Timestamp = &v
		}
		ent.Highlights = append(ent.Highlights, eh)
	}
	return ent
}

func (p *Pipeline) fail(ctx context.Context, meeting *entities.Meeting, cause error) error {
	if p.logger != nil {
		p.logger.Error("⚠️ Meeting processing failed",
			zap.String("meeting_id", meeting.ID), zap.Error(cause))
	}
	meeting.MarkError(cause.Error())
	if err := p.meetings.Update(ctx, meeting); err != nil && p.logger != nil {
		p.logger.Error("Failed to persist meeting error state", zap.Error(err))
	}
	return cause
}
