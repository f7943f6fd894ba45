// Package localstorage provides an output folder on an afero filesystem
package localstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/UnendingLoop/BatchWatermark/internal/mwlogger"
	"github.com/spf13/afero"
)

type Storage struct {
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) *Storage {
	return &Storage{fs: fs, dir: dir}
}

// Prepare creates the output folder with all parents; an existing folder is fine.
func (s *Storage) Prepare(ctx context.Context) error {
	return s.fs.MkdirAll(s.dir, 0o755)
}

// Put writes r to a temp file next to the target and renames it into place,
// so a file under the final name is always complete.
func (s *Storage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if cErr := tmp.Close(); err == nil {
		err = cErr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err == nil {
		err = s.fs.Rename(tmpName, s.Locate(key))
	}

	if err != nil {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			logger := mwlogger.LoggerFromContext(ctx)
			logger.Warn().Err(rmErr).Msgf("Failed to remove temp file %s", tmpName)
		}
		return err
	}
	return nil
}

func (s *Storage) Locate(key string) string {
	return filepath.Join(s.dir, key)
}
