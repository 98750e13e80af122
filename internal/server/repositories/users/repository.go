// Package users is the identity directory: persistence of models.User.
package users

import (
	"context"

	"github.com/dmitrijs2005/cloudstore/internal/server/models"
)

// Repository looks users up by their unique keys. Lookups that match nothing
// return common.ErrorNotFound; Create returns common.ErrAlreadyExists when the
// login or email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
