package users

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

// SQLiteRepository is the users.Repository used by single-node deployments.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (id, login, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`

	createdAt := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Login, user.Email, user.PasswordHash, createdAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.CreatedAt = createdAt
	return user, nil
}

func (r *SQLiteRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, login, email, password_hash, created_at FROM users WHERE login = ?`, login)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, login, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
