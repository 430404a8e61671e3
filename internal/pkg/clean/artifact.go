package clean

import (
	"context"
	"fmt"
	"strconv"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/amazingchow/ai-teacher/internal/pkg/persistence"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"
	"github.com/pkg/errors"
)

// RecordingDB loads recordings
type RecordingDB interface {
	LoadRecording(ctx context.Context, id int64) (*persistence.Recording, error)
}

// FileDeleter removes audio artifacts
type FileDeleter interface {
	Delete(ctx context.Context, name string) error
}

// ArtifactCleaner drops the audio file of a recording.
// Runs before the db cleaner in the cleaners group
type ArtifactCleaner struct {
	db    RecordingDB
	filer FileDeleter
}

// NewArtifactCleaner creates ArtifactCleaner instance
func NewArtifactCleaner(db RecordingDB, filer FileDeleter) (*ArtifactCleaner, error) {
	if db == nil {
		return nil, fmt.Errorf("no db")
	}
	if filer == nil {
		return nil, fmt.Errorf("no filer")
	}
	return &ArtifactCleaner{db: db, filer: filer}, nil
}

// Clean removes the artifact file for the recording id
func (c *ArtifactCleaner) Clean(ctx context.Context, id string) error {
	rID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("wrong id '%s': %w", id, err)
	}
	rec, err := c.db.LoadRecording(ctx, rID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			goapp.Log.Info().Str("ID", id).Msg("no recording, skip artifact clean")
			return nil
		}
		return fmt.Errorf("can't load recording: %w", err)
	}
	if err := c.filer.Delete(ctx, rec.Filename); err != nil {
		return fmt.Errorf("can't delete artifact: %w", err)
	}
	goapp.Log.Info().Str("ID", id).Str("file", rec.Filename).Msg("artifact deleted")
	return nil
}
