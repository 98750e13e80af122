package filex

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirAndExists(t *testing.T) {
	fsys := afero.NewMemMapFs()

	ok, err := Exists(fsys, "/data/u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, EnsureDir(fsys, "/data/u1"))

	ok, err = Exists(fsys, "/data/u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveIfExists(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("x"), 0o600))

	removed, err := RemoveIfExists(fsys, "/a.txt")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveIfExists(fsys, "/a.txt")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWriteLimited_OK(t *testing.T) {
	dir := t.TempDir()
	fsys := afero.NewOsFs()
	p := filepath.Join(dir, "f.bin")

	n, err := WriteLimited(fsys, p, strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	got, err := afero.ReadFile(fsys, p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestWriteLimited_TooLargeLeavesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := WriteLimited(fsys, "/big.bin", bytes.NewReader(make([]byte, 11)), 10)
	require.ErrorIs(t, err, ErrTooLarge)

	ok, err := Exists(fsys, "/big.bin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteLimited_MaxLimit(t *testing.T) {
	fsys := afero.NewMemMapFs()

	n, err := WriteLimited(fsys, "/f", strings.NewReader("hello"), math.MaxInt64)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	got, err := afero.ReadFile(fsys, "/f")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestWriteLimited_RefusesExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/f", []byte("old"), 0o600))

	_, err := WriteLimited(fsys, "/f", strings.NewReader("new"), 10)
	require.Error(t, err)

	got, _ := afero.ReadFile(fsys, "/f")
	assert.Equal(t, "old", string(got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read broke") }

func TestWriteLimited_ReadErrorCleansUp(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := WriteLimited(fsys, "/partial", failingReader{}, 10)
	require.EqualError(t, err, "read broke")

	ok, _ := Exists(fsys, "/partial")
	assert.False(t, ok)
}
