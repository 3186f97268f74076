package search

import "context"

// Entry is one transcript segment to index
type Entry struct {
	MeetingID string
	SegmentID string
	Speaker   string
	Start     float64
	End       float64
	Text      string
}

// Hit is one semantic search result, best first
type Hit struct {
	MeetingID string  `json:"meeting_id"`
	SegmentID string  `json:"segment_id"`
	Speaker   string  `json:"speaker"`
	Score     float64 `json:"score"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}

// Embedder turns texts into vectors. Implementations are expected to
// degrade internally rather than fail for transient model issues.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the semantic segment index
type Index interface {
	// Add upserts entries keyed by segment id
	Add(ctx context.Context, entries []Entry) error

	// Search returns the topK nearest segments for the query. An empty
	// meetingID searches across all meetings.
	Search(ctx context.Context, query, meetingID string, topK int) ([]Hit, error)

	// Remove drops all entries of a meeting
	Remove(ctx context.Context, meetingID string) error
}
