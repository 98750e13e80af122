package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// SQLiteRepository implements file metadata storage on SQLite.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) FindByOwnerAndFilename(ctx context.Context, userID, filename string) (*models.File, error) {
	query := `SELECT id, user_id, filename, path, size, updated_at FROM files WHERE user_id=? AND filename=?`

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, userID, filename).
		Scan(&f.ID, &f.UserID, &f.Filename, &f.Path, &f.Size, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) ExistsByOwnerAndFilename(ctx context.Context, userID, filename string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM files WHERE user_id=? AND filename=?`, userID, filename).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, file *models.File) (*models.File, error) {
	now := time.Now().UTC()

	if file.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO files (user_id, filename, path, size, updated_at) VALUES (?, ?, ?, ?, ?)`,
			file.UserID, file.Filename, file.Path, file.Size, now)
		if err != nil {
			return nil, saveError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		file.ID = id
		file.UpdatedAt = now
		return file, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE files SET filename=?, path=?, size=?, updated_at=? WHERE id=? AND user_id=?`,
		file.Filename, file.Path, file.Size, now, file.ID, file.UserID)
	if err != nil {
		return nil, saveError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}
	file.UpdatedAt = now
	return file, nil
}

func saveError(err error) error {
	if dbx.IsUniqueViolation(err) {
		return common.ErrAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *SQLiteRepository) Delete(ctx context.Context, file *models.File) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=? AND user_id=?`, file.ID, file.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, userID string, limit int) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, filename, path, size, updated_at FROM files WHERE user_id=? ORDER BY id LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.UserID, &item.Filename, &item.Path, &item.Size, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	return result, rows.Err()
}
