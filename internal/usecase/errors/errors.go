package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInternalError = errors.New("internal server error")
)

// Collaborator errors. Pipeline stages degrade gracefully when a
// collaborator reports one of these instead of failing the whole run.
// Engine availability uses ai.ErrUnavailable from pkg/ai.
var (
	// ErrMalformedResponse means a generative-text response could not be
	// coerced into the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Pipeline errors
var (
	ErrNoSegments       = errors.New("transcription produced no segments")
	ErrMeetingNotReady  = errors.New("meeting has no processed transcript")
	ErrJobAlreadyActive = errors.New("a job is already running for this meeting")
)

// Upload errors
var (
	ErrUploadTooLarge   = errors.New("upload exceeds the size limit")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
