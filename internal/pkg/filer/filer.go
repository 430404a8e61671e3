package filer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/airenas/go-app/pkg/goapp"
)

// Local keeps audio artifacts in a local uploads dir.
// The artifact of a recording exists exactly while its check is pending
type Local struct {
	dir string
}

// NewLocal creates the store, the dir is created if missing
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("no upload dir")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("can't init upload dir: %w", err)
	}
	goapp.Log.Info().Str("dir", dir).Msg("cfg: upload dir")
	return &Local{dir: dir}, nil
}

// SaveFile stores an uploaded audio artifact
func (f *Local) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	fp, err := f.checkedPath(name)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(fp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("can't create '%s': %w", fp, err)
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("can't write '%s': %w", fp, err)
	}
	return nil
}

// Path resolves the on-disk location of an artifact
func (f *Local) Path(name string) string {
	return filepath.Join(f.dir, name)
}

// Delete removes the artifact. Missing file is not an error
func (f *Local) Delete(ctx context.Context, name string) error {
	fp, err := f.checkedPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("can't delete '%s': %w", fp, err)
	}
	return nil
}

func (f *Local) checkedPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no file name")
	}
	fp := filepath.Join(f.dir, filepath.Base(name))
	return fp, nil
}
