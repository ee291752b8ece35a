package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	for _, name := range []string{"b.json", "A.JSON", "notes.txt", "sub/c.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.json"), 0o755))

	// --- Act ---
	files, err := ListFilesByExtension(dir, ".json")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "A.JSON"), filepath.Join(dir, "b.json")}, files)
}

func TestListFilesByExtension_Errors(t *testing.T) {
	t.Parallel()

	_, err := ListFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".json")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Panics(t, func() { _, _ = ListFilesByExtension(t.TempDir(), "") })
}

func TestIsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.json")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	ok, err := IsDir(dir)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = IsDir(file)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = IsDir(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
