package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

type scriptedGenerator struct {
	reply string
	err   error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, _ bool, _ float32) (string, error) {
	return g.reply, g.err
}

func TestScoreSegment(t *testing.T) {
	if got := ScoreSegment("fine."); got != 0 {
		t.Errorf("plain text should score 0, got %v", got)
	}
	if got := ScoreSegment("go! go! go!"); got <= 0 {
		t.Errorf("exclamations should score positive, got %v", got)
	}
	if got := ScoreSegment("??"); got >= 0 {
		t.Errorf("questions should score negative, got %v", got)
	}
}

func TestLabelFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  entities.SentimentLabel
	}{
		{-0.5, entities.SentimentNegative},
		{-0.2, entities.SentimentNegative},
		{0, entities.SentimentNeutral},
		{0.2, entities.SentimentPositive},
		{0.9, entities.SentimentPositive},
	}
	for _, c := range cases {
		if got := LabelFromScore(c.score); got != c.want {
			t.Errorf("LabelFromScore(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestAggregateOverview_Empty(t *testing.T) {
	ov := AggregateOverview(nil)
	if ov.Label != "neutral" || ov.Score != 0 || ov.Rationale != "no sentiment rows" {
		t.Errorf("unexpected empty aggregate: %+v", ov)
	}
}

func TestAggregateOverview_Averages(t *testing.T) {
	ov := AggregateOverview([]float64{0.4, 0.4, 0.4})
	if ov.Label != "positive" {
		t.Errorf("expected positive, got %q", ov.Label)
	}
	if ov.Score < 0.39 || ov.Score > 0.41 {
		t.Errorf("expected mean ~0.4, got %v", ov.Score)
	}
	if !strings.Contains(ov.Rationale, "3 segments") {
		t.Errorf("rationale should name the row count: %q", ov.Rationale)
	}
}

func TestFallbackHighlights_RanksAndTruncates(t *testing.T) {
	long := strings.Repeat("this is a blocker and a big problem. ", 10)
	segs := []ai.Segment{
		{Start: 1, End: 2, Text: "ok"},
		{Start: 5, End: 6, Text: long},
		{Start: 9, End: 10, Text: "thanks, great work everyone, really happy!"},
	}

	hs := FallbackHighlights(segs, 2)
	if len(hs) != 2 {
		t.Fatalf("expected 2 highlights, got %d", len(hs))
	}
	if ts, ok := hs[0].Timestamp.Seconds(); !ok || ts != 5 {
		t.Errorf("strongest highlight should be the blocker segment, got %+v", hs[0])
	}
	if hs[0].Polarity != "negative" {
		t.Errorf("expected negative polarity, got %q", hs[0].Polarity)
	}
	if len(hs[0].Text) > 180 {
		t.Errorf("highlight text should be truncated to 180 chars, got %d", len(hs[0].Text))
	}
}

func TestSentimentEngine_ModelReplyWins(t *testing.T) {
	gen := &scriptedGenerator{reply: `{"label":"mixed","score":0.1,"vibe":"lively","rationale":"ups and downs","highlights":[{"timestamp":4,"text":"heated exchange","polarity":"contentious"}]}`}
	e := NewSentimentEngine(gen, nil)

	ov := e.Overview(context.Background(), []string{"chunk"}, nil)
	if ov.Label != "mixed" || ov.Vibe != "lively" || len(ov.Highlights) != 1 {
		t.Errorf("model reply not used: %+v", ov)
	}
}

func TestSentimentEngine_BackfillsHighlightsAndVibe(t *testing.T) {
	gen := &scriptedGenerator{reply: `{"label":"positive","score":0.6,"rationale":"good energy","highlights":[]}`}
	e := NewSentimentEngine(gen, nil)
	segs := []ai.Segment{{Start: 0, End: 1, Text: "thanks, this is great!"}}

	ov := e.Overview(context.Background(), []string{"chunk"}, segs)
	if len(ov.Highlights) == 0 {
		t.Errorf("expected backfilled highlights")
	}
	if ov.Vibe != "good energy" {
		t.Errorf("vibe should backfill from rationale, got %q", ov.Vibe)
	}
}

func TestSentimentEngine_FailureFallsBack(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("model down")}
	e := NewSentimentEngine(gen, nil)
	segs := []ai.Segment{
		{Start: 0, End: 1, Text: "we have a problem and a risk here?"},
		{Start: 1, End: 2, Text: "thanks, great progress!"},
	}

	ov := e.Overview(context.Background(), []string{"chunk"}, segs)
	if ov.Label == "" || ov.Vibe == "" {
		t.Errorf("fallback overview incomplete: %+v", ov)
	}
	if len(ov.Highlights) == 0 {
		t.Errorf("fallback overview should carry highlights")
	}
}

func TestSentimentEngine_GarbageReplyFallsBack(t *testing.T) {
	gen := &scriptedGenerator{reply: "I am sorry, I cannot help with that."}
	e := NewSentimentEngine(gen, nil)

	ov := e.Overview(context.Background(), []string{"chunk"}, []ai.Segment{{Text: "hello"}})
	if ov.Label != "neutral" {
		t.Errorf("expected neutral fallback, got %q", ov.Label)
	}
}
