package worker

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/spf13/afero"
)

// moveFile moves src to dst without ever overwriting dst. When rename is not possible
// (different devices, for example) it falls back to copy and remove.
func moveFile(fs afero.Fs, src, dst string) error {
	if _, err := fs.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", model.ErrDestinationTaken, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	renameErr := fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if err := copyAndRemove(fs, src, dst); err != nil {
		return fmt.Errorf("rename failed (%v), copy failed: %w", renameErr, err)
	}
	return nil
}

func copyAndRemove(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = fs.Remove(dst)
		return err
	}

	// не удалось убрать исходник - копию откатываем, чтобы файл не задвоился
	if err := fs.Remove(src); err != nil {
		_ = fs.Remove(dst)
		return err
	}
	return nil
}
