package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/filex"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/files"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudstore/internal/server/sandbox"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// StorageService is the storage engine. Each stored file is a pair of an
// object under <root>/<user id>/ and a metadata record; every operation keeps
// the two in step and compensates on the filesystem side when the metadata
// side fails. The filesystem step runs inside the metadata transaction and
// the commit comes last, so the store's (owner, filename) constraint orders
// concurrent writers of the same key.
//
// All operations authenticate the credential first and have no effect when
// that fails.
type StorageService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	identity         Authenticator
	fs               afero.Fs
	sandbox          *sandbox.Sandbox
	maxFileSize      int64
	defaultListLimit int
	logger           logging.Logger
}

// NewStorageService wires the engine. fsys must be the filesystem sb was
// created on.
func NewStorageService(db *sql.DB, m repomanager.RepositoryManager, identity Authenticator,
	fsys afero.Fs, sb *sandbox.Sandbox, cfg *config.Config, logger logging.Logger) *StorageService {
	return &StorageService{
		db:               db,
		repomanager:      m,
		identity:         identity,
		fs:               fsys,
		sandbox:          sb,
		maxFileSize:      cfg.MaxFileSize,
		defaultListLimit: cfg.DefaultListLimit,
		logger:           logger.With("module", "storage"),
	}
}

// Upload stores the content of r as filename, replacing a previous file of
// the same name. Content is staged next to the destination and renamed into
// place, so a failed upload never damages the file it would have replaced.
func (s *StorageService) Upload(ctx context.Context, credential, filename string, r io.Reader) (*models.File, error) {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrInvalidArgument)
	}

	dst, key, err := s.locate(user, filename)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dst)
	if err := filex.EnsureDir(s.fs, dir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIOFailure, err)
	}

	tmp := s.sidePath(dst, "upload")
	size, err := filex.WriteLimited(s.fs, tmp, r, s.maxFileSize)
	if err != nil {
		if errors.Is(err, filex.ErrTooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", common.ErrSizeExceeded, s.maxFileSize)
		}
		return nil, fmt.Errorf("%w: write %s: %v", common.ErrIOFailure, filename, err)
	}

	var (
		saved  *models.File
		backup string
		placed bool
	)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		rec, err := repo.FindByOwnerAndFilename(ctx, user.ID, key)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			rec = &models.File{UserID: user.ID, Filename: key}
		case err != nil:
			return fmt.Errorf("find file record: %w", err)
		}

		rec.Path, rec.Size = dst, size
		if rec, err = repo.Save(ctx, rec); err != nil {
			return saveError(key, err)
		}

		if backup, err = s.moveAside(dst); err != nil {
			return err
		}
		if err := s.fs.Rename(tmp, dst); err != nil {
			if rerr := s.restore(backup, dst); rerr != nil {
				return s.consistencyFault(ctx, "restore after failed upload", dst, rerr)
			}
			return fmt.Errorf("%w: place %s: %v", common.ErrIOFailure, filename, err)
		}
		placed = true
		saved = rec
		return nil
	})

	if err != nil {
		if _, rerr := filex.RemoveIfExists(s.fs, tmp); rerr != nil {
			s.logger.Warn(ctx, "staged upload not removed", "path", tmp, "error", rerr)
		}
		if placed {
			if cerr := s.unplace(dst, backup); cerr != nil {
				return nil, s.consistencyFault(ctx, "undo upload after metadata failure", dst, cerr)
			}
		}
		return nil, err
	}

	s.dropBackup(ctx, backup)
	s.logger.Info(ctx, "file uploaded", "user_id", user.ID, "filename", key, "size", size)
	return saved, nil
}

// Download opens the stored file. The caller must close the reader.
func (s *StorageService) Download(ctx context.Context, credential, filename string) (*models.File, io.ReadCloser, error) {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(filename) == "" {
		return nil, nil, fmt.Errorf("%w: filename is required", common.ErrInvalidArgument)
	}

	_, key, err := s.locate(user, filename)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.findRecord(ctx, s.repomanager.Files(s.db), user, key)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.fs.Open(rec.Path)
	if err != nil {
		return nil, nil, s.consistencyFault(ctx, "record without readable file", rec.Path, err)
	}
	return rec, f, nil
}

// Delete removes the file and then its record. A file already missing from
// disk is not an error.
func (s *StorageService) Delete(ctx context.Context, credential, filename string) error {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: filename is required", common.ErrInvalidArgument)
	}

	_, key, err := s.locate(user, filename)
	if err != nil {
		return err
	}

	var (
		path    string
		removed bool
	)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		rec, err := s.findRecord(ctx, repo, user, key)
		if err != nil {
			return err
		}
		path = rec.Path

		if err := repo.Delete(ctx, rec); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: %s", common.ErrorNotFound, key)
			}
			return fmt.Errorf("delete file record: %w", err)
		}

		existed, err := filex.RemoveIfExists(s.fs, rec.Path)
		if err != nil {
			return fmt.Errorf("%w: remove %s: %v", common.ErrIOFailure, filename, err)
		}
		if !existed {
			s.logger.Warn(ctx, "file already missing on delete", "user_id", user.ID, "path", rec.Path)
		}
		removed = existed
		return nil
	})

	if err != nil {
		if removed {
			return s.consistencyFault(ctx, "file removed but record kept", path, err)
		}
		return err
	}

	s.logger.Info(ctx, "file deleted", "user_id", user.ID, "filename", key)
	return nil
}

// Rename moves oldName to newName. Unlike Upload it never overwrites: an
// existing newName is common.ErrConflict.
func (s *StorageService) Rename(ctx context.Context, credential, oldName, newName string) (*models.File, error) {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(oldName) == "" || strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("%w: both filenames are required", common.ErrInvalidArgument)
	}
	if oldName == newName {
		return nil, fmt.Errorf("%w: new filename equals the old one", common.ErrInvalidArgument)
	}

	_, oldKey, err := s.locate(user, oldName)
	if err != nil {
		return nil, err
	}

	var (
		saved            *models.File
		oldPath, newPath string
		moved            bool
	)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		rec, err := s.findRecord(ctx, repo, user, oldKey)
		if err != nil {
			return err
		}
		oldPath = rec.Path

		var newKey string
		if newPath, newKey, err = s.locate(user, newName); err != nil {
			return err
		}
		if newKey == oldKey {
			return fmt.Errorf("%w: %s and %s name the same file", common.ErrInvalidArgument, oldName, newName)
		}

		taken, err := repo.ExistsByOwnerAndFilename(ctx, user.ID, newKey)
		if err != nil {
			return fmt.Errorf("check file record: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: %s already exists", common.ErrConflict, newKey)
		}

		ok, err := filex.Exists(s.fs, oldPath)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %v", common.ErrIOFailure, oldName, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s is missing on disk", common.ErrorNotFound, oldName)
		}

		rec.Filename, rec.Path = newKey, newPath
		if rec, err = repo.Save(ctx, rec); err != nil {
			return saveError(newKey, err)
		}

		if err := filex.EnsureDir(s.fs, filepath.Dir(newPath)); err != nil {
			return fmt.Errorf("%w: %v", common.ErrIOFailure, err)
		}
		if err := s.fs.Rename(oldPath, newPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s is missing on disk", common.ErrorNotFound, oldName)
			}
			return fmt.Errorf("%w: move %s: %v", common.ErrIOFailure, oldName, err)
		}
		moved = true
		saved = rec
		return nil
	})

	if err != nil {
		if moved {
			if merr := s.fs.Rename(newPath, oldPath); merr != nil {
				return nil, s.consistencyFault(ctx, "move back after metadata failure", newPath, merr)
			}
		}
		return nil, err
	}

	s.logger.Info(ctx, "file renamed", "user_id", user.ID, "from", oldName, "to", newName)
	return saved, nil
}

// List returns up to limit (filename, size) pairs of the caller ordered by
// record id. limit <= 0 selects the configured default.
func (s *StorageService) List(ctx context.Context, credential string, limit int) ([]models.FileInfo, error) {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultListLimit
	}

	recs, err := s.repomanager.Files(s.db).ListByOwner(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	out := make([]models.FileInfo, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.FileInfo{Filename: r.Filename, Size: r.Size})
	}
	return out, nil
}

// locate resolves name inside the user's directory. It returns the absolute
// path and the record key: the slash-separated path relative to that
// directory, so "a.txt" and "./a.txt" share one record.
func (s *StorageService) locate(user *models.User, name string) (path, key string, err error) {
	userRoot, err := s.sandbox.UserRoot(user.ID)
	if err != nil {
		return "", "", err
	}
	if path, err = s.sandbox.Resolve(userRoot, name); err != nil {
		return "", "", err
	}
	rel, err := filepath.Rel(userRoot, path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrAccessDenied, err)
	}
	return path, filepath.ToSlash(rel), nil
}

// findRecord loads the record of filename and re-checks its stored path.
func (s *StorageService) findRecord(ctx context.Context, repo files.Repository, user *models.User, filename string) (*models.File, error) {
	rec, err := repo.FindByOwnerAndFilename(ctx, user.ID, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, filename)
		}
		return nil, fmt.Errorf("find file record: %w", err)
	}

	userRoot, err := s.sandbox.UserRoot(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sandbox.Validate(userRoot, rec.Path); err != nil {
		s.logger.Error(ctx, "stored path failed validation", "user_id", user.ID, "file_id", rec.ID, "error", err)
		return nil, err
	}
	return rec, nil
}

// sidePath names a hidden sibling of p used for staging or backups.
func (s *StorageService) sidePath(p, kind string) string {
	return filepath.Join(filepath.Dir(p), "."+filepath.Base(p)+"."+kind+"-"+uuid.NewString())
}

// moveAside renames an existing p to a backup path and returns it, or ""
// when there is nothing at p.
func (s *StorageService) moveAside(p string) (string, error) {
	fi, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: stat %s: %v", common.ErrIOFailure, p, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", common.ErrConflict, filepath.Base(p))
	}

	backup := s.sidePath(p, "bak")
	if err := s.fs.Rename(p, backup); err != nil {
		return "", fmt.Errorf("%w: back up %s: %v", common.ErrIOFailure, p, err)
	}
	return backup, nil
}

func (s *StorageService) restore(backup, p string) error {
	if backup == "" {
		return nil
	}
	return s.fs.Rename(backup, p)
}

// unplace removes a freshly placed file and puts the backup back.
func (s *StorageService) unplace(p, backup string) error {
	if _, err := filex.RemoveIfExists(s.fs, p); err != nil {
		return err
	}
	return s.restore(backup, p)
}

func (s *StorageService) dropBackup(ctx context.Context, backup string) {
	if backup == "" {
		return
	}
	if _, err := filex.RemoveIfExists(s.fs, backup); err != nil {
		s.logger.Warn(ctx, "backup not removed", "path", backup, "error", err)
	}
}

func (s *StorageService) consistencyFault(ctx context.Context, what, path string, cause error) error {
	s.logger.Error(ctx, "consistency fault", "what", what, "path", path, "error", cause)
	return fmt.Errorf("%w: %s: %s: %v", common.ErrConsistencyFault, what, path, cause)
}

func saveError(filename string, err error) error {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		return fmt.Errorf("%w: %s already exists", common.ErrConflict, filename)
	case errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("%w: %s changed concurrently", common.ErrConflict, filename)
	}
	return fmt.Errorf("save file record: %w", err)
}
