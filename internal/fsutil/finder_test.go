package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.hcl", "sub/b.hcl", "sub/c.txt")

	files, err := FindFilesByExtension(dir, ".hcl")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.hcl"), filepath.Join(dir, "sub", "b.hcl")}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(dir, "") })
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "z.hcl", "sub/b.hcl", "notes.md")

	files, err := CollectFiles([]string{
		filepath.Join(dir, "sub"),
		dir,
		filepath.Join(dir, "z.hcl"),
		filepath.Join(dir, "notes.md"),
		filepath.Join(dir, "missing"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "b.hcl"), filepath.Join(dir, "z.hcl")}, files)
}
