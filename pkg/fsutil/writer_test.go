package fsutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInvalid = errors.New("invalid")

func TestAtomicWriteFile_CreatesFileAndDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vars", "overrides.yml")

	require.NoError(t, fsutil.AtomicWriteFile(path, []byte("a: 1\n"), nil))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(content))
}

func TestAtomicWriteFile_ReplacesAndKeepsMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overrides.yml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, fsutil.AtomicWriteFile(path, []byte("new"), nil))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestAtomicWriteFile_ValidationFailureLeavesOriginal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	err := fsutil.AtomicWriteFile(path, []byte("new"), func([]byte) error { return errInvalid })

	require.ErrorIs(t, err, errInvalid)

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "old", string(content))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1, "temporary file must be cleaned up")
}

func TestAtomicWriteFile_EmptyPath(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, fsutil.AtomicWriteFile("", nil, nil), fsutil.ErrEmptyOutputPath)
}

func TestExpandHomePath(t *testing.T) {
	t.Parallel()

	abs, err := fsutil.ExpandHomePath("/tmp/../tmp/bacalhau-ansible")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bacalhau-ansible", abs)

	home, err := fsutil.ExpandHomePath("~/bundle")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(home))
	assert.Equal(t, "bundle", filepath.Base(home))

	rel, err := fsutil.ExpandHomePath("inventory")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
}
