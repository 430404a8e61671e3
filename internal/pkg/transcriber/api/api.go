package api

import "context"

// Transcriber converts a stored audio artifact into raw text.
// The underlying model is a heavyweight shared resource - implementations
// are created once per process and reused across invocations
type Transcriber interface {
	Transcribe(ctx context.Context, filePath, language string) (string, error)
}

// TranscriptionError marks a terminal transcription failure.
// It is the only error class durably recorded on a recording
type TranscriptionError struct {
	err error
}

// NewTranscriptionError creates new error
func NewTranscriptionError(err error) error {
	return &TranscriptionError{err: err}
}

func (e *TranscriptionError) Error() string {
	return "Transcription failed: " + e.err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.err
}
