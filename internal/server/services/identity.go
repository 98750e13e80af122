// Package services contains server-side business logic: credential
// verification and identity resolution, user registration and login, and
// the storage engine.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
)

// Authenticator turns a raw credential ("Bearer <jwt>") into the user it
// belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*models.User, error)
}

// IdentityService verifies bearer tokens and resolves their subject (an
// email) to a user. It never creates users.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
}

// NewIdentityService constructs an IdentityService using repositories and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
	}
}

// Verify strips the Bearer prefix and checks the token. It returns the
// subject or one of common.ErrTokenExpired, common.ErrInvalidToken,
// common.ErrMalformedToken.
func (s *IdentityService) Verify(credential string) (string, error) {
	token, err := auth.StripBearer(credential)
	if err != nil {
		return "", err
	}
	return auth.GetSubjectFromToken(token, s.jwtSecret)
}

// Resolve returns the user whose email is subject, or common.ErrorNotFound.
func (s *IdentityService) Resolve(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user %q", common.ErrorNotFound, subject)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// Authenticate runs Verify then Resolve.
func (s *IdentityService) Authenticate(ctx context.Context, credential string) (*models.User, error) {
	subject, err := s.Verify(credential)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, subject)
}
