package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// replyPerPrompt routes canned replies by prompt content
type replyPerPrompt struct {
	chunkReply string
	mergeReply string
	listsReply string
	err        error
}

func (g *replyPerPrompt) Generate(_ context.Context, prompt string, _ bool, _ float32) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.Contains(prompt, "CHUNK JSONS"):
		return g.mergeReply, nil
	case strings.Contains(prompt, "Topic Tags"):
		return g.listsReply, nil
	default:
		return g.chunkReply, nil
	}
}

func TestExtractChunks_DegradesPerChunk(t *testing.T) {
	gen := &replyPerPrompt{chunkReply: "not json at all"}
	e := NewExtractor(gen, nil)

	chunk := strings.Repeat("z", 300)
	parts := e.ExtractChunks(context.Background(), []string{chunk})
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if len(parts[0].SummaryBullets) != 1 || len(parts[0].SummaryBullets[0]) != 200 {
		t.Errorf("degraded part should carry a 200-char prefix bullet: %+v", parts[0])
	}
}

func TestMerge_UsesModelReply(t *testing.T) {
	longSummary := strings.Repeat("A detailed paragraph about the meeting. ", 15)
	gen := &replyPerPrompt{
		mergeReply: `{"summary":` + mustJSON(longSummary) + `,"overall_sentiment":"Positive","key_topics":["budget"],"decisions":[],"action_items":[],"risks":["scope creep"]}`,
	}
	e := NewExtractor(gen, nil)

	report := e.Merge(context.Background(), []ChunkInsight{{SummaryBullets: []string{"b"}}})
	if report.Summary != longSummary {
		t.Errorf("model summary should be kept verbatim")
	}
	if len(report.Risks) != 1 || report.Risks[0] != "scope creep" {
		t.Errorf("risks lost: %+v", report.Risks)
	}
}

func TestMerge_StitchesOnFailure(t *testing.T) {
	gen := &replyPerPrompt{err: errors.New("model down")}
	e := NewExtractor(gen, nil)

	parts := []ChunkInsight{
		{SummaryBullets: []string{"first point", "second point"}, Topics: []Topic{{Label: "budget"}}},
		{SummaryBullets: []string{"third point"}, Topics: []Topic{{Label: "budget"}, {Label: "roadmap"}}},
	}
	report := e.Merge(context.Background(), parts)

	if !strings.Contains(report.Summary, "# Meeting Summary") {
		t.Errorf("stitched summary should be synthesized Markdown: %q", report.Summary)
	}
	if !strings.Contains(report.Summary, "## Executive Summary") ||
		!strings.Contains(report.Summary, "## Detailed Notes") ||
		!strings.Contains(report.Summary, "## Timeline Highlights") {
		t.Errorf("synthesized summary missing sections: %q", report.Summary)
	}
	if len(report.KeyTopics) != 2 {
		t.Errorf("topics should be deduplicated across parts: %+v", report.KeyTopics)
	}
}

func TestMerge_ShortSummaryGetsSynthesized(t *testing.T) {
	gen := &replyPerPrompt{
		mergeReply: `{"summary":"Short.","key_topics":["budget"],"decisions":[{"text":"ship the feature this week"}],"action_items":[],"risks":[]}`,
	}
	e := NewExtractor(gen, nil)

	report := e.Merge(context.Background(), []ChunkInsight{{SummaryBullets: []string{"note one"}}})
	if !strings.Contains(report.Summary, "- Key topic: budget") {
		t.Errorf("synthesis should bullet key topics: %q", report.Summary)
	}
	if !strings.Contains(report.Summary, "- Decision: ship the feature this week") {
		t.Errorf("synthesis should bullet decisions: %q", report.Summary)
	}
	if !strings.Contains(report.Summary, "- note one") {
		t.Errorf("synthesis should reuse chunk bullets as notes: %q", report.Summary)
	}
}

func TestExtractLists(t *testing.T) {
	gen := &replyPerPrompt{
		listsReply: `{"decisions":[{"text":"we will adopt the new stack"}],"action_items":[{"text":"update the migration plan","owner":"Speaker A"}],"key_topics":["stack","migration"]}`,
	}
	e := NewExtractor(gen, nil)

	decs, acts, topics, err := e.ExtractLists(context.Background(), []string{"chunk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decs) != 1 || len(acts) != 1 || len(topics) != 2 {
		t.Errorf("lists not decoded: %d %d %d", len(decs), len(acts), len(topics))
	}
	if acts[0].Owner == nil || *acts[0].Owner != "Speaker A" {
		t.Errorf("owner lost: %+v", acts[0])
	}
}

func mustJSON(s string) string {
	out := strings.ReplaceAll(s, `"`, `\"`)
	return `"` + out + `"`
}
