package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// LocalStore keeps uploads on the local filesystem under one root
// directory, one subdirectory per meeting.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// safeFilename strips path components and unsafe characters
func safeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// Save writes the stream to disk, suffixing the name on collision
func (s *LocalStore) Save(_ context.Context, meetingID, filename string, reader io.Reader, _ int64, _ string) (string, error) {
	dir := filepath.Join(s.root, meetingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create meeting dir: %w", err)
	}

	name := safeFilename(filename)
	target := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	return target, nil
}

// Open streams a stored file
func (s *LocalStore) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Localize is a no-op for disk-backed storage
func (s *LocalStore) Localize(_ context.Context, locator string) (string, func(), error) {
	if _, err := os.Stat(locator); err != nil {
		return "", func() {}, fmt.Errorf("stored file missing: %w", err)
	}
	return locator, func() {}, nil
}
