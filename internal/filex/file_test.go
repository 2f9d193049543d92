package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_NestedAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "users", "abc", "documents")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "f.json")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o660))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCopyFile_OverwritesDestination(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o660))
	require.NoError(t, os.WriteFile(dst, []byte("older and longer"), 0o660))

	require.NoError(t, CopyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}

func TestCopyFile_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	err := CopyFile(filepath.Join(tmp, "nope"), filepath.Join(tmp, "dst"))
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(path, []byte("hello")))
	require.NoError(t, WriteFile(path, []byte("hi")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(b))
}

func TestWriteFile_MissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.txt"), []byte("x"))
	require.Error(t, err)
}
