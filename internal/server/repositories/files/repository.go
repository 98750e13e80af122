// Package files is the metadata store: one row per stored file, unique per
// (owner, filename).
package files

import (
	"context"

	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// Repository persists models.File records.
//
// Save inserts when file.ID is zero and updates the row with that id
// otherwise; either way a clash on (owner, filename) returns
// common.ErrAlreadyExists. Lookups and deletes that match nothing return
// common.ErrorNotFound. ListByOwner orders by id.
type Repository interface {
	FindByOwnerAndFilename(ctx context.Context, userID, filename string) (*models.File, error)
	ExistsByOwnerAndFilename(ctx context.Context, userID, filename string) (bool, error)
	Save(ctx context.Context, file *models.File) (*models.File, error)
	Delete(ctx context.Context, file *models.File) error
	ListByOwner(ctx context.Context, userID string, limit int) ([]*models.File, error)
}
