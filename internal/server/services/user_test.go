package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/files"
	usersrepo "github.com/dmitrijs2005/cloudstore/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	useCheapHashes(t)

	u, err := e.users.Register(ctx, " alice ", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)
	assert.Len(t, u.ID, 36)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "argon2id$"))

	_, err = e.users.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = e.users.Register(ctx, "bob", "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = e.users.Register(ctx, "", "x@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = e.users.Register(ctx, "carol", "carol@example.com", "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	useCheapHashes(t)

	_, err := e.users.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	for _, id := range []string{"alice", "alice@example.com"} {
		tok, err := e.users.Login(ctx, id, "s3cret")
		require.NoError(t, err, id)

		sub, err := auth.GetSubjectFromToken(tok, []byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", sub)
	}

	_, err = e.users.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = e.users.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = e.users.Login(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, cred := e.addUser(t, "alice")

	require.NoError(t, e.users.Logout(ctx, cred))
	assert.ErrorIs(t, e.users.Logout(ctx, "Bearer junk"), common.ErrUnauthenticated)
}

// --- fakes for repository error paths ---

type fakeUsersRepo struct {
	usersrepo.Repository
	getErr error
	user   *models.User
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.getErr
}

type fakeUsersManager struct{ u *fakeUsersRepo }

func (m *fakeUsersManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeUsersManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeUsersManager) Files(dbx.DBTX) files.Repository              { return nil }

func TestLogin_RepositoryErrors(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenValidityDuration = time.Minute

	rm := &fakeUsersManager{u: &fakeUsersRepo{getErr: errors.New("db down")}}
	s := NewUserService(nil, rm, nil, cfg, logging.Nop{})

	_, err := s.Login(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)

	rm.u = &fakeUsersRepo{user: &models.User{ID: "u1", Email: "a@example.com", PasswordHash: "garbage"}}
	_, err = s.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRegister_RepositoryError(t *testing.T) {
	useCheapHashes(t)
	rm := &fakeUsersManager{u: &fakeUsersRepo{getErr: errors.New("db down")}}
	s := NewUserService(nil, rm, nil, testConfig(), logging.Nop{})

	_, err := s.Register(context.Background(), "alice", "a@example.com", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, common.ErrConflict)
}
