package search

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// MemoryIndex is an in-process index used in tests and as a fallback
// when no Postgres vector store is available.
type MemoryIndex struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry // keyed by segment id
	embedder Embedder
}

type memoryEntry struct {
	entry  Entry
	vector []float32
}

// NewMemoryIndex creates an empty in-memory index
func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{
		entries:  make(map[string]memoryEntry),
		embedder: embedder,
	}
}

// Add upserts entries keyed by segment id
func (idx *MemoryIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = strings.ToLower(e.Text)
	}
	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, e := range entries {
		idx.entries[e.SegmentID] = memoryEntry{entry: e, vector: vectors[i]}
	}
	return nil
}

// Search ranks entries by cosine similarity
func (idx *MemoryIndex) Search(ctx context.Context, query, meetingID string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	vectors, err := idx.embedder.Embed(ctx, []string{strings.ToLower(query)})
	if err != nil {
		return nil, err
	}
	qv := vectors[0]

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []Hit
	for _, me := range idx.entries {
		if meetingID != "" && me.entry.MeetingID != meetingID {
			continue
		}
		hits = append(hits, Hit{
			MeetingID: me.entry.MeetingID,
			SegmentID: me.entry.SegmentID,
			Speaker:   me.entry.Speaker,
			Score:     cosine(qv, me.vector),
			Start:     me.entry.Start,
			End:       me.entry.End,
			Text:      me.entry.Text,
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Remove drops all entries of a meeting
func (idx *MemoryIndex) Remove(_ context.Context, meetingID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, me := range idx.entries {
		if me.entry.MeetingID == meetingID {
			delete(idx.entries, id)
		}
	}
	return nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
