package insight

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

const (
	// minTurnSeconds is the shortest turn kept as its own speaker
	minTurnSeconds = 1.0

	// maxSpeakers caps the speaker map by total speaking time
	maxSpeakers = 6
)

// Normalizer assigns and cleans up speaker labels on transcript
// segments. Diarization failures degrade to heuristics rather than
// failing the pipeline.
type Normalizer struct {
	diarizer Diarizer
	logger   *zap.Logger
}

// NewNormalizer creates a speaker normalizer. diarizer may be nil.
func NewNormalizer(diarizer Diarizer, logger *zap.Logger) *Normalizer {
	return &Normalizer{diarizer: diarizer, logger: logger}
}

// Normalize labels segments in place. When the transcription engine
// already produced two or more distinct labels they are only renamed
// to Speaker A..Z; otherwise diarization turns are applied by maximal
// overlap, short turns are smoothed and minor speakers capped.
func (n *Normalizer) Normalize(ctx context.Context, audioPath string, segments []ai.Segment) {
	distinct := map[string]struct{}{}
	for _, s := range segments {
		if s.Speaker != "" {
			distinct[s.Speaker] = struct{}{}
		}
	}
	if len(distinct) >= 2 {
		normalizeLabels(segments)
		return
	}

	if n.diarizer != nil {
		turns, err := n.diarizer.Diarize(ctx, audioPath)
		if err != nil {
			if n.logger != nil {
				n.logger.Warn("⚠️ Diarization unavailable, falling back to heuristics", zap.Error(err))
			}
		} else {
			assignByOverlap(segments, turns)
		}
	}

	normalizeLabels(segments)
	smoothShortTurns(segments, minTurnSeconds)
	limitMinorSpeakers(segments, maxSpeakers)
}

// assignByOverlap gives each segment the label of the turn it overlaps
// the most. Segments with no overlapping turn keep their label.
func assignByOverlap(segments []ai.Segment, turns []ai.Turn) {
	for i := range segments {
		var best string
		bestOverlap := 0.0
		for _, t := range turns {
			if ov := t.Overlap(segments[i].Start, segments[i].End); ov > bestOverlap {
				bestOverlap = ov
				best = t.Speaker
			}
		}
		if best != "" {
			segments[i].Speaker = best
		}
	}
}

// normalizeLabels renames labels to Speaker A..Z in order of first
// appearance. Labels past the 26th keep their raw value.
func normalizeLabels(segments []ai.Segment) {
	var seen []string
	for _, s := range segments {
		if s.Speaker == "" {
			continue
		}
		found := false
		for _, v := range seen {
			if v == s.Speaker {
				found = true
				break
			}
		}
		if !found {
			seen = append(seen, s.Speaker)
		}
	}

	mapping := make(map[string]string, len(seen))
	for i, lab := range seen {
		if i >= 26 {
			break
		}
		mapping[lab] = fmt.Sprintf("Speaker %c", 'A'+i)
	}
	for i := range segments {
		if norm, ok := mapping[segments[i].Speaker]; ok {
			segments[i].Speaker = norm
		}
	}
}

// smoothShortTurns merges turns shorter than minTurnSec into the
// previous speaker so micro-turns do not create spurious speakers.
func smoothShortTurns(segments []ai.Segment, minTurnSec float64) {
	prev := ""
	for i := range segments {
		spk := segments[i].Speaker
		if prev != "" && spk != "" && spk != prev && segments[i].Duration() <= minTurnSec {
			segments[i].Speaker = prev
			spk = prev
		}
		prev = spk
	}
}

// limitMinorSpeakers keeps the top speakers by total speaking time and
// folds the rest into the last kept speaker. Duration ties keep the
// speaker heard first, so identical inputs always rank identically.
func limitMinorSpeakers(segments []ai.Segment, max int) {
	totals := map[string]float64{}
	var ranked []string
	for _, s := range segments {
		if s.Speaker == "" {
			continue
		}
		if _, ok := totals[s.Speaker]; !ok {
			ranked = append(ranked, s.Speaker)
		}
		totals[s.Speaker] += s.Duration()
	}
	if len(ranked) == 0 {
		return
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]] > totals[ranked[j]]
	})
	keep := map[string]struct{}{}
	for i, lab := range ranked {
		if i >= max {
			break
		}
		keep[lab] = struct{}{}
	}

	lastKept := ""
	for i := range segments {
		spk := segments[i].Speaker
		if spk == "" {
			if lastKept != "" {
				segments[i].Speaker = lastKept
			}
			continue
		}
		if _, ok := keep[spk]; ok {
			lastKept = spk
			continue
		}
		if lastKept != "" {
			segments[i].Speaker = lastKept
		} else {
			segments[i].Speaker = "Speaker Others"
		}
	}
}

// AssignSpeakersIfMissing labels segments that came back unlabeled.
// Existing labels are normalized to Speaker A..Z; fully unlabeled
// transcripts get an alternating two-speaker heuristic driven by
// pauses and long turns.
func AssignSpeakersIfMissing(segments []ai.Segment) {
	hasLabel := false
	for _, s := range segments {
		if s.Speaker != "" {
			hasLabel = true
			break
		}
	}
	if hasLabel {
		normalizeLabels(segments)
		return
	}

	current := "Speaker A"
	lastEnd := 0.0
	for i := range segments {
		if i > 0 {
			gap := segments[i].Start - lastEnd
			dur := segments[i].Duration()
			if gap >= 0.8 || dur >= 6.0 {
				if current == "Speaker A" {
					current = "Speaker B"
				} else {
					current = "Speaker A"
				}
			}
		}
		segments[i].Speaker = current
		lastEnd = segments[i].End
	}

	// Long monologue-looking transcripts still get a second speaker so
	// downstream prompts see a dialogue.
	if len(segments) >= 4 {
		distinct := map[string]struct{}{}
		for _, s := range segments {
			distinct[s.Speaker] = struct{}{}
		}
		if len(distinct) == 1 {
			for i := range segments {
				if i%2 == 1 {
					segments[i].Speaker = "Speaker B"
				}
			}
		}
	}
}
