// Package filex contains filesystem helpers written against afero.Fs so
// they run unchanged on the OS filesystem and on in-memory filesystems.
package filex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/spf13/afero"
)

// ErrTooLarge is returned by WriteLimited when the reader yields more than
// the allowed number of bytes.
var ErrTooLarge = errors.New("content exceeds size limit")

// EnsureDir creates dir and any missing parents.
func EnsureDir(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned to the caller.
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RemoveIfExists removes path and reports whether something was removed.
// A missing path is not an error.
func RemoveIfExists(fsys afero.Fs, path string) (bool, error) {
	err := fsys.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteLimited creates a new file at path and copies r into it, accepting at
// most limit bytes. The file must not exist yet. On any failure, including
// ErrTooLarge, the partially written file is removed before returning.
// The returned size is the number of bytes on disk.
func WriteLimited(fsys afero.Fs, path string, r io.Reader, limit int64) (n int64, err error) {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = fsys.Remove(path)
		}
	}()

	src := r
	if limit < math.MaxInt64 {
		src = io.LimitReader(r, limit+1)
	}
	n, err = io.Copy(f, src)
	if err != nil {
		return 0, err
	}
	if n > limit {
		return 0, ErrTooLarge
	}
	if err = f.Sync(); err != nil {
		return 0, err
	}
	if err = f.Close(); err != nil {
		return 0, err
	}
	return n, nil
}
