package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByOwnerAndFilename returns the record of userID named filename.
func (r *PostgresRepository) FindByOwnerAndFilename(ctx context.Context, userID, filename string) (*models.File, error) {
	query := `SELECT id, user_id, filename, path, size, updated_at FROM files
		WHERE user_id=$1 AND filename=$2
		`

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

// ExistsByOwnerAndFilename reports whether userID has a record named filename.
func (r *PostgresRepository) ExistsByOwnerAndFilename(ctx context.Context, userID, filename string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM files WHERE user_id=$1 AND filename=$2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, filename).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Save inserts a new record or updates filename, path and size of an
// existing one.
func (r *PostgresRepository) Save(ctx context.Context, file *models.File) (*models.File, error) {
	var err error
	if file.ID == 0 {
		query := `
			INSERT INTO files (user_id, filename, path, size)
			VALUES ($1, $2, $3, $4)
			RETURNING id, updated_at
		`
		err = r.db.QueryRowContext(ctx, query,
			file.UserID, file.Filename, file.Path, file.Size).Scan(&file.ID, &file.UpdatedAt)
	} else {
		query := `
			UPDATE files SET filename=$1, path=$2, size=$3, updated_at=now()
			WHERE id=$4 AND user_id=$5
			RETURNING updated_at
		`
		err = r.db.QueryRowContext(ctx, query,
			file.Filename, file.Path, file.Size, file.ID, file.UserID).Scan(&file.UpdatedAt)
	}

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// Delete removes the record. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, file *models.File) error {
	query := `DELETE FROM files WHERE id=$1 AND user_id=$2`
	res, err := r.db.ExecContext(ctx, query, file.ID, file.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// ListByOwner returns at most limit records of userID ordered by id.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, limit int) ([]*models.File, error) {
	query := `SELECT id, user_id, filename, path, size, updated_at FROM files
		WHERE user_id=$1
		ORDER BY id
		LIMIT $2
		`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
