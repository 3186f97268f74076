package insight

import (
	"fmt"
	"strings"

	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

// DefaultChunkChars bounds a chunk so prompts stay inside small local
// model context windows.
const DefaultChunkChars = 4000

// ChunkSegments renders segments as timestamped lines and packs them
// greedily into chunks of at most maxChars characters. A line longer
// than maxChars becomes its own chunk rather than being split.
func ChunkSegments(segments []ai.Segment, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	var chunks []string
	var cur strings.Builder
	for _, seg := range segments {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Speaker"
		}
		line := fmt.Sprintf("[%.1f-%.1f] %s: %s\n", seg.Start, seg.End, speaker, seg.Text)

		if cur.Len() > 0 && cur.Len()+len(line) > maxChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
