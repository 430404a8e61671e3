package utils

import "errors"

// ErrNotFound indicates a missing recording or question.
// It is returned to the caller without touching the recording state.
var ErrNotFound = errors.New("not found")

// ErrArtifactMissing indicates the audio file is gone from storage.
// The recording stays pending - resubmission after re-upload is the only recovery.
var ErrArtifactMissing = errors.New("audio artifact missing")
