// Package sandbox confines user-supplied names to a storage root.
//
// Every path derived from user input (upload destination, rename target) goes
// through Resolve, and every path read back from the metadata store goes
// through Validate before the filesystem is touched.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/spf13/afero"
)

var ErrEmptyRoot = errors.New("storage root is required")

// Sandbox is a storage root on a concrete filesystem.
type Sandbox struct {
	fs   afero.Fs
	root string
}

// New makes root absolute, creates it on fsys when missing and returns a
// Sandbox bound to it.
func New(fsys afero.Fs, root string) (*Sandbox, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrEmptyRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	abs = filepath.Clean(abs)

	if err := fsys.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Sandbox{fs: fsys, root: abs}, nil
}

// Root returns the absolute storage root.
func (s *Sandbox) Root() string {
	return s.root
}

// UserRoot returns the directory holding the files of the given user. The id
// must be a single path segment.
func (s *Sandbox) UserRoot(userID string) (string, error) {
	if userID == "" || userID != filepath.Base(userID) || userID == "." || userID == ".." {
		return "", fmt.Errorf("%w: bad user id %q", common.ErrAccessDenied, userID)
	}
	return s.Resolve(s.root, userID)
}

// Resolve maps name onto base, which must be the root or a directory under
// it. The result is rejected when it escapes base or crosses a symlink.
func (s *Sandbox) Resolve(base, name string) (string, error) {
	base = filepath.Clean(base)
	if base != s.root && !Within(s.root, base) {
		return "", fmt.Errorf("%w: base %q is outside the storage root", common.ErrAccessDenied, base)
	}

	p, err := Resolve(base, name)
	if err != nil {
		return "", err
	}

	if err := s.checkSymlinks(p); err != nil {
		return "", err
	}
	return p, nil
}

// Validate re-checks a path that was stored earlier. It must be absolute,
// already clean and strictly inside base.
func (s *Sandbox) Validate(base, stored string) error {
	base = filepath.Clean(base)
	if !filepath.IsAbs(stored) || filepath.Clean(stored) != stored {
		return fmt.Errorf("%w: stored path %q is not canonical", common.ErrAccessDenied, stored)
	}
	if !Within(base, stored) || !Within(s.root, stored) {
		return fmt.Errorf("%w: stored path %q is outside %q", common.ErrAccessDenied, stored, base)
	}
	return s.checkSymlinks(stored)
}

// checkSymlinks walks the components of p below the root and rejects any
// existing one that is a symlink. Components that do not exist yet end the
// walk.
func (s *Sandbox) checkSymlinks(p string) error {
	lst, ok := s.fs.(afero.Lstater)
	if !ok {
		return nil
	}

	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAccessDenied, err)
	}

	cur := s.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "" || part == "." {
			continue
		}
		cur = filepath.Join(cur, part)

		fi, _, err := lst.LstatIfPossible(cur)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("%w: lstat %s: %v", common.ErrIOFailure, cur, err)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %q crosses a symlink", common.ErrAccessDenied, p)
		}
	}
	return nil
}

// Resolve normalizes name and joins it onto base without touching any
// filesystem. The result must have base as a strict prefix; absolute names
// and names containing NUL are rejected.
func Resolve(base, name string) (string, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("%w: name contains NUL", common.ErrAccessDenied)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: absolute name %q", common.ErrAccessDenied, name)
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q climbs above %q", common.ErrAccessDenied, name, base)
	}

	base = filepath.Clean(base)
	p := filepath.Join(base, clean)
	if !Within(base, p) {
		return "", fmt.Errorf("%w: %q escapes %q", common.ErrAccessDenied, name, base)
	}
	return p, nil
}

// Within reports whether candidate lies strictly below root. Both are cleaned
// first; root itself is not within root.
func Within(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if root == candidate {
		return false
	}

	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}
