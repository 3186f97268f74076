package storage

import (
	"context"
	"io"
)

// Store persists uploaded media. The locator returned by Save is an
// opaque backend reference: a disk path for local storage, an object key
// for MinIO.
type Store interface {
	// Save persists an upload stream under the meeting and returns a
	// locator for later retrieval
	Save(ctx context.Context, meetingID, filename string, reader io.Reader, size int64, contentType string) (string, error)

	// Open streams a stored object
	Open(ctx context.Context, locator string) (io.ReadCloser, error)

	// Localize guarantees a local filesystem path for subprocess engines.
	// The cleanup func removes any temporary copy and is always non-nil.
	Localize(ctx context.Context, locator string) (string, func(), error)
}
