package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root := "/srv/store"

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "a.txt", want: "/srv/store/a.txt"},
		{name: "nested", in: "docs/a.txt", want: "/srv/store/docs/a.txt"},
		{name: "dot segments collapse", in: "./docs/../a.txt", want: "/srv/store/a.txt"},
		{name: "climb and return", in: "x/../../store/a.txt", wantErr: true},
		{name: "traversal", in: "../../etc/passwd", wantErr: true},
		{name: "parent", in: "..", wantErr: true},
		{name: "absolute", in: "/etc/passwd", wantErr: true},
		{name: "empty is the base", in: "", wantErr: true},
		{name: "dot is the base", in: ".", wantErr: true},
		{name: "sibling prefix", in: "../store2/a.txt", wantErr: true},
		{name: "nul", in: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrAccessDenied)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/a", "/a/b"))
	assert.True(t, Within("/a/", "/a/b/c"))
	assert.False(t, Within("/a", "/a"))
	assert.False(t, Within("/a", "/ab"))
	assert.False(t, Within("/a/b", "/a"))
}

func TestNew(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := New(fs, "/data/store/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/data/store"), s.Root())

	ok, err := afero.DirExists(fs, s.Root())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = New(fs, "  ")
	assert.ErrorIs(t, err, ErrEmptyRoot)
}

func TestUserRoot(t *testing.T) {
	s, err := New(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	got, err := s.UserRoot("0b7e-42")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "0b7e-42"), got)

	for _, bad := range []string{"", ".", "..", "a/b", "../x"} {
		_, err := s.UserRoot(bad)
		assert.ErrorIs(t, err, common.ErrAccessDenied, "id %q", bad)
	}
}

func TestSandbox_ResolveRejectsForeignBase(t *testing.T) {
	s, err := New(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	_, err = s.Resolve("/elsewhere", "a.txt")
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	got, err := s.Resolve("/data/u1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "u1", "a.txt"), got)
}

func TestSandbox_Validate(t *testing.T) {
	s, err := New(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	base := filepath.Join("/data", "u1")

	assert.NoError(t, s.Validate(base, filepath.Join(base, "a.txt")))

	for _, stored := range []string{
		"relative/a.txt",
		"/data/u1/../u2/a.txt",
		"/data/u2/a.txt",
		"/etc/passwd",
		base,
	} {
		assert.ErrorIs(t, s.Validate(base, stored), common.ErrAccessDenied, "stored %q", stored)
	}
}

func TestSandbox_RejectsSymlinkComponents(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()

	s, err := New(afero.NewOsFs(), filepath.Join(dir, "store"))
	require.NoError(t, err)

	userRoot, err := s.UserRoot("u1")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(userRoot, 0o750))
	require.NoError(t, os.Symlink(outside, filepath.Join(userRoot, "link")))

	_, err = s.Resolve(userRoot, "link/secret.txt")
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	assert.ErrorIs(t, s.Validate(userRoot, filepath.Join(userRoot, "link", "secret.txt")), common.ErrAccessDenied)

	got, err := s.Resolve(userRoot, "fresh/new.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userRoot, "fresh", "new.txt"), got)
}
