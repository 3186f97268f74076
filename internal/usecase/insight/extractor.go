package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// minNarrativeChars is the shortest acceptable merged summary; shorter
// ones are rebuilt from the structured parts.
const minNarrativeChars = 400

// Extractor turns transcript chunks into a merged meeting report
// through a chat model, degrading to structural fallbacks whenever a
// reply does not parse.
type Extractor struct {
	gen    Generator
	logger *zap.Logger
}

// NewExtractor creates an extractor around a generator
func NewExtractor(gen Generator, logger *zap.Logger) *Extractor {
	return &Extractor{gen: gen, logger: logger}
}

// ExtractChunks analyzes each chunk independently. A chunk whose reply
// does not parse degrades to a single bullet with the chunk prefix so
// the merge step always has material.
func (e *Extractor) ExtractChunks(ctx context.Context, chunks []string) []ChunkInsight {
	parts := make([]ChunkInsight, 0, len(chunks))
	for i, chunk := range chunks {
		var part ChunkInsight
		resp, err := e.gen.Generate(ctx, buildChunkPrompt(chunk), true, 0)
		if err == nil {
			err = DecodeJSON(resp, &part)
		}
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("⚠️ Chunk analysis failed, keeping raw prefix",
					zap.Int("chunk", i), zap.Error(err))
			}
			part = ChunkInsight{SummaryBullets: []string{clip(chunk, 200)}}
		}
		parts = append(parts, part)
	}
	return parts
}

// Merge combines per-chunk insights into one report. When the model
// reply does not parse, the report is stitched from the parts instead.
func (e *Extractor) Merge(ctx context.Context, parts []ChunkInsight) Report {
	partsJSON := make([]string, 0, len(parts))
	for _, p := range parts {
		b, err := json.Marshal(p)
		if err != nil {
			continue
		}
		partsJSON = append(partsJSON, string(b))
	}

	var report Report
	resp, err := e.gen.Generate(ctx, buildMergePrompt(partsJSON), true, 0)
	if err == nil {
		err = DecodeJSON(resp, &report)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("⚠️ Merge failed, stitching report from chunk parts", zap.Error(err))
		}
		report = stitchReport(parts)
	}

	e.ensureNarrative(&report, parts)
	return report
}

// stitchReport builds a minimal report directly from chunk parts
func stitchReport(parts []ChunkInsight) Report {
	var bullets []string
	var topics []Topic
	var decs, acts []Item
	for _, p := range parts {
		bullets = append(bullets, p.SummaryBullets...)
		topics = append(topics, p.Topics...)
		decs = append(decs, p.Decisions...)
		acts = append(acts, p.ActionItems...)
	}

	if len(bullets) > 10 {
		bullets = bullets[:10]
	}
	lines := make([]string, 0, len(bullets))
	for _, b := range bullets {
		lines = append(lines, "- "+b)
	}

	seen := map[string]struct{}{}
	var uniq []Topic
	for _, t := range topics {
		if _, ok := seen[t.Label]; ok {
			continue
		}
		seen[t.Label] = struct{}{}
		uniq = append(uniq, t)
		if len(uniq) >= 10 {
			break
		}
	}
	if len(decs) > 10 {
		decs = decs[:10]
	}
	if len(acts) > 10 {
		acts = acts[:10]
	}

	return Report{
		Summary:     strings.Join(lines, "\n"),
		KeyTopics:   uniq,
		Decisions:   decs,
		ActionItems: acts,
		Risks:       []string{},
	}
}

// ensureNarrative rebuilds the summary as structured Markdown when the
// merged one is too short to be useful.
func (e *Extractor) ensureNarrative(report *Report, parts []ChunkInsight) {
	if len(strings.TrimSpace(report.Summary)) >= minNarrativeChars {
		return
	}

	lines := []string{"# Meeting Summary", "## Executive Summary"}

	var es []string
	for i, t := range report.KeyTopics {
		if i >= 6 {
			break
		}
		es = append(es, "- Key topic: "+t.Label)
	}
	for i, d := range report.Decisions {
		if i >= 3 {
			break
		}
		if d.Text != "" {
			es = append(es, "- Decision: "+d.Text)
		}
	}
	for i, a := range report.ActionItems {
		if i >= 3 {
			break
		}
		if a.Text != "" {
			es = append(es, "- Action: "+a.Text)
		}
	}
	if len(es) == 0 {
		es = append(es, "- Discussion covered multiple topics and follow-ups.")
	}
	if len(es) > 10 {
		es = es[:10]
	}
	lines = append(lines, es...)

	lines = append(lines, "\n## Detailed Notes")
	notes := 0
	for _, p := range parts {
		for i, b := range p.SummaryBullets {
			if i >= 2 || notes >= 10 {
				break
			}
			lines = append(lines, "- "+b)
			notes++
		}
		if notes >= 10 {
			break
		}
	}
	if notes == 0 {
		lines = append(lines, "- See key items below.")
	}

	lines = append(lines, "\n## Timeline Highlights")
	if len(report.Highlights) > 0 {
		for i, h := range report.Highlights {
			if i >= 8 {
				break
			}
			if ts, ok := h.Timestamp.Seconds(); ok {
				lines = append(lines, fmt.Sprintf("- [%s] %s", formatClock(ts), h.Text))
			} else {
				lines = append(lines, "- "+h.Text)
			}
		}
	} else {
		lines = append(lines, "- Key moments are reflected in decisions and actions.")
	}

	report.Summary = strings.Join(lines, "\n")
}

// ExtractLists runs a dedicated pass for decisions, action items and
// topics across all chunks. Its results are preferred over the merged
// report's lists when it succeeds.
func (e *Extractor) ExtractLists(ctx context.Context, chunks []string) ([]Item, []Item, []Topic, error) {
	resp, err := e.gen.Generate(ctx, buildListsPrompt(chunks), true, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	var out struct {
		Decisions   []Item  `json:"decisions"`
		ActionItems []Item  `json:"action_items"`
		KeyTopics   []Topic `json:"key_topics"`
	}
	if err := DecodeJSON(resp, &out); err != nil {
		return nil, nil, nil, err
	}
	return out.Decisions, out.ActionItems, out.KeyTopics, nil
}

// Refine asks the model to tighten the extracted lists. Low
// temperature keeps the edit conservative.
func (e *Extractor) Refine(ctx context.Context, chunks []string, actions, decisions []Item) ([]Item, []Item, error) {
	resp, err := e.gen.Generate(ctx, buildRefinePrompt(chunks, actions, decisions), true, 0.1)
	if err != nil {
		return nil, nil, err
	}
	var out struct {
		ActionItems []Item `json:"action_items"`
		Decisions   []Item `json:"decisions"`
	}
	if err := DecodeJSON(resp, &out); err != nil {
		return nil, nil, err
	}
	return out.ActionItems, out.Decisions, nil
}

// Summarize runs a single-shot report over all chunks, used when the
// chunked path fails entirely.
func (e *Extractor) Summarize(ctx context.Context, chunks []string) (Report, error) {
	resp, err := e.gen.Generate(ctx, buildSummaryPrompt(chunks), true, 0)
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := DecodeJSON(resp, &report); err != nil {
		return Report{}, err
	}
	return report, nil
}

func formatClock(sec float64) string {
	s := int(sec)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
