package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/files"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/cloudstore/internal/server/sandbox"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.StorageRoot = "/store"
	cfg.MaxFileSize = 64
	return cfg
}

func bearer(t *testing.T, email string) string {
	t.Helper()
	tok, err := auth.GenerateToken(email, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return common.BearerPrefix + tok
}

// faultyManager wraps a real RepositoryManager and lets tests fail file
// record writes.
type faultyManager struct {
	repomanager.RepositoryManager

	mu        sync.Mutex
	saveErr   error
	deleteErr error
}

func (m *faultyManager) Files(db dbx.DBTX) files.Repository {
	return &faultyFiles{Repository: m.RepositoryManager.Files(db), m: m}
}

func (m *faultyManager) failSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *faultyManager) failDelete(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

type faultyFiles struct {
	files.Repository
	m *faultyManager
}

func (f *faultyFiles) Save(ctx context.Context, file *models.File) (*models.File, error) {
	f.m.mu.Lock()
	err := f.m.saveErr
	f.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Repository.Save(ctx, file)
}

func (f *faultyFiles) Delete(ctx context.Context, file *models.File) error {
	f.m.mu.Lock()
	err := f.m.deleteErr
	f.m.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Repository.Delete(ctx, file)
}

// faultyFs fails selected filesystem calls.
type faultyFs struct {
	afero.Fs
	rename func(oldname, newname string) error
	remove func(name string) error
	open   func(name string) error
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if f.rename != nil {
		if err := f.rename(oldname, newname); err != nil {
			return err
		}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultyFs) Remove(name string) error {
	if f.remove != nil {
		if err := f.remove(name); err != nil {
			return err
		}
	}
	return f.Fs.Remove(name)
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	if f.open != nil {
		if err := f.open(name); err != nil {
			return nil, err
		}
	}
	return f.Fs.Open(name)
}

type testEnv struct {
	db       *sql.DB
	rm       *faultyManager
	fs       *faultyFs
	sb       *sandbox.Sandbox
	cfg      *config.Config
	identity *IdentityService
	users    *UserService
	storage  *StorageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := repotest.OpenSQLite(t)
	db.SetMaxOpenConns(1)

	cfg := testConfig()
	rm := &faultyManager{RepositoryManager: repomanager.NewSQLiteRepositoryManager()}
	fsys := &faultyFs{Fs: afero.NewMemMapFs()}

	sb, err := sandbox.New(fsys, cfg.StorageRoot)
	require.NoError(t, err)

	identity := NewIdentityService(db, rm, cfg)
	return &testEnv{
		db:       db,
		rm:       rm,
		fs:       fsys,
		sb:       sb,
		cfg:      cfg,
		identity: identity,
		users:    NewUserService(db, rm, identity, cfg, logging.Nop{}),
		storage:  NewStorageService(db, rm, identity, fsys, sb, cfg, logging.Nop{}),
	}
}

// addUser registers a user and returns it with a valid credential.
func (e *testEnv) addUser(t *testing.T, login string) (*models.User, string) {
	t.Helper()
	useCheapHashes(t)
	u, err := e.users.Register(context.Background(), login, login+"@example.com", "pw-"+login)
	require.NoError(t, err)
	return u, bearer(t, u.Email)
}

// filesUnder lists every regular file below dir, sorted.
func (e *testEnv) filesUnder(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := afero.Walk(e.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func useCheapHashes(t *testing.T) {
	t.Helper()
	orig := hashPassword
	hashPassword = func(password string) (string, error) {
		return auth.HashPassword(password, auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16})
	}
	t.Cleanup(func() { hashPassword = orig })
}
