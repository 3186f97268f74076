package identifier

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a prefixed identifier such as "mtg_7f3c..." so that row ids
// remain self-describing in logs and API payloads. An empty prefix yields
// a bare id.
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
