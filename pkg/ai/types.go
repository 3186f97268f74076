package ai

import "errors"

// ErrUnavailable means an engine is disabled, missing a binary or
// credential, or otherwise cannot serve requests at all. Callers treat it
// as a signal to degrade, not as a fatal failure.
var ErrUnavailable = errors.New("engine unavailable")

// Segment is one contiguous speech span produced by a transcription
// engine. Start and End are seconds from the beginning of the recording.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Turn is one diarization span labeling who spoke when
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Duration returns the segment length in seconds
func (s Segment) Duration() float64 {
	d := s.End - s.Start
	if d < 0 {
		return 0
	}
	return d
}

// Duration returns the turn length in seconds
func (t Turn) Duration() float64 {
	d := t.End - t.Start
	if d < 0 {
		return 0
	}
	return d
}

// Overlap returns how many seconds of the segment fall inside the turn
func (t Turn) Overlap(start, end float64) float64 {
	lo := start
	if t.Start > lo {
		lo = t.Start
	}
	hi := end
	if t.End < hi {
		hi = t.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
