package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/internal/domain/entities"
	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

var positiveMarkers = []string{"great", "awesome", "good", "excellent", "thanks", "glad", "happy", ":)"}
var negativeMarkers = []string{"issue", "problem", "concern", "bug", "delay", "risk", "blocker", ":(", "angry"}

// ScoreSegment gives a crude per-segment polarity from punctuation
// density. It exists so every segment gets a sentiment row even when
// no model is reachable.
func ScoreSegment(text string) float64 {
	length := len(text)
	if length < 1 {
		length = 1
	}
	pol := (float64(strings.Count(text, "!")) - 0.5*float64(strings.Count(text, "?"))) / float64(length)
	return clamp(pol, -1.0, 1.0)
}

// LabelFromScore buckets a score into positive/neutral/negative
func LabelFromScore(score float64) entities.SentimentLabel {
	switch {
	case score <= -0.2:
		return entities.SentimentNegative
	case score >= 0.2:
		return entities.SentimentPositive
	default:
		return entities.SentimentNeutral
	}
}

// AggregateOverview averages per-segment scores into a provisional
// meeting-level verdict.
func AggregateOverview(scores []float64) Overview {
	if len(scores) == 0 {
		return Overview{Label: "neutral", Score: 0.0, Rationale: "no sentiment rows"}
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	return Overview{
		Label:     string(LabelFromScore(avg)),
		Score:     avg,
		Rationale: fmt.Sprintf("average over %d segments", len(scores)),
	}
}

// polarityOfText is a marker-word polarity used to rank fallback
// highlights. Richer than ScoreSegment but still model-free.
func polarityOfText(text string) float64 {
	t := strings.ToLower(text)
	score := 0.0
	for _, w := range positiveMarkers {
		if strings.Contains(t, w) {
			score += 0.5
		}
	}
	for _, w := range negativeMarkers {
		if strings.Contains(t, w) {
			score -= 0.5
		}
	}
	score += 0.3 * float64(strings.Count(t, "!"))
	score -= 0.2 * float64(strings.Count(t, "?"))
	return clamp(score, -1.0, 1.0)
}

// FallbackHighlights ranks segments by polarity magnitude and length
// to pick salient moments without a model.
func FallbackHighlights(segments []ai.Segment, maxItems int) []OverviewHighlight {
	type scored struct {
		mag float64
		pol float64
		seg ai.Segment
	}
	ranked := make([]scored, 0, len(segments))
	for _, s := range segments {
		pol := polarityOfText(s.Text)
		mag := 0.7*abs(pol) + 0.3*min1(float64(len(s.Text))/200.0)
		ranked = append(ranked, scored{mag, pol, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].mag > ranked[j].mag })

	if len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}
	out := make([]OverviewHighlight, 0, len(ranked))
	for _, r := range ranked {
		polarity := "contentious"
		if r.pol > 0.2 {
			polarity = "positive"
		} else if r.pol < -0.2 {
			polarity = "negative"
		}
		ts := FlexFloat(r.seg.Start)
		out = append(out, OverviewHighlight{
			Timestamp: &ts,
			Text:      clip(strings.TrimSpace(r.seg.Text), 180),
			Polarity:  polarity,
		})
	}
	return out
}

// FallbackOverview builds the whole verdict heuristically: averaged
// per-segment scores plus ranked highlights and a vibe string.
func FallbackOverview(segments []ai.Segment) Overview {
	scores := make([]float64, 0, len(segments))
	for _, s := range segments {
		scores = append(scores, ScoreSegment(s.Text))
	}
	ov := AggregateOverview(scores)
	ov.Highlights = FallbackHighlights(segments, 6)

	pos, neg := 0, 0
	for _, h := range ov.Highlights {
		switch h.Polarity {
		case "positive":
			pos++
		case "negative":
			neg++
		}
	}
	switch {
	case ov.Label == "neutral" && pos > 0 && neg > 0:
		ov.Vibe = "mixed: balanced positives and concerns"
	case ov.Label == "positive":
		ov.Vibe = "upbeat and collaborative"
	case ov.Label == "negative":
		ov.Vibe = "tense with notable concerns"
	default:
		ov.Vibe = "neutral, matter-of-fact"
	}
	return ov
}

// SentimentEngine produces the meeting-level sentiment overview,
// preferring the chat model and degrading to heuristics.
type SentimentEngine struct {
	gen    Generator
	logger *zap.Logger
}

// NewSentimentEngine creates a sentiment engine around a generator
func NewSentimentEngine(gen Generator, logger *zap.Logger) *SentimentEngine {
	return &SentimentEngine{gen: gen, logger: logger}
}

// Overview asks the model for the verdict over all chunks. Missing
// labels or highlights are backfilled from the heuristic path, and a
// failed call falls back to it entirely.
func (e *SentimentEngine) Overview(ctx context.Context, chunks []string, segments []ai.Segment) Overview {
	var ov Overview
	resp, err := e.gen.Generate(ctx, buildSentimentPrompt(chunks), true, 0)
	if err == nil {
		err = DecodeJSON(resp, &ov)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("⚠️ Sentiment model failed, using aggregate", zap.Error(err))
		}
		return FallbackOverview(segments)
	}

	if ov.Label == "" {
		return FallbackOverview(segments)
	}
	if len(ov.Highlights) == 0 {
		ov.Highlights = FallbackHighlights(segments, 6)
	}
	if ov.Vibe == "" {
		if ov.Rationale != "" {
			ov.Vibe = ov.Rationale
		} else {
			ov.Vibe = ov.Label
		}
	}
	return ov
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
