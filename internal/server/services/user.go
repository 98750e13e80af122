package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// hashPassword is a seam so tests can use cheap argon2 parameters.
var hashPassword = func(password string) (string, error) {
	return auth.HashPassword(password, auth.DefaultArgon2Params())
}

// UserService provides account operations:
// - Register: create users
// - Login: verify credentials and mint an access token
// - Logout: advisory; the token stays valid until it expires
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	identity                    Authenticator
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, identity Authenticator, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		identity:                    identity,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "users"),
	}
}

// Register creates a user with a fresh uuid and an argon2id password hash.
// A taken login or email is common.ErrConflict.
func (s *UserService) Register(ctx context.Context, login, email, password string) (*models.User, error) {
	login, email = strings.TrimSpace(login), strings.TrimSpace(email)
	if login == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: login, email and password are required", common.ErrInvalidArgument)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{ID: uuid.NewString(), Login: login, Email: email, PasswordHash: hash}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: login or email already registered", common.ErrConflict)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "login", u.Login)
	return u, nil
}

// Login checks the password of the user identified by login (or by email,
// when the identifier contains "@" and no login matches) and returns a
// signed access token whose subject is the user's email. Unknown users and
// wrong passwords both yield common.ErrUnauthenticated.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.findForLogin(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUnauthenticated
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "user_id", user.ID, "error", err)
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrUnauthenticated
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// Logout verifies the credential and records the event. Tokens are not
// tracked server side, so nothing is revoked.
func (s *UserService) Logout(ctx context.Context, credential string) error {
	user, err := s.identity.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "user logged out", "user_id", user.ID)
	return nil
}

func (s *UserService) findForLogin(ctx context.Context, identifier string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, identifier)
	if err == nil || !errors.Is(err, common.ErrorNotFound) || !strings.Contains(identifier, "@") {
		return user, err
	}
	return repo.GetUserByEmail(ctx, identifier)
}
