package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	files, err := New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	storedPath, err := files.Save("abc-picture.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "images/abc-picture.png", storedPath)

	content, err := os.ReadFile(filepath.Join(files.Root(), "abc-picture.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, files.Remove(storedPath))

	_, err = os.Stat(filepath.Join(files.Root(), "abc-picture.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsDuplicateName(t *testing.T) {
	files, err := New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	_, err = files.Save("abc-picture.png", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = files.Save("abc-picture.png", strings.NewReader("second"))
	assert.Error(t, err)
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	files, err := New(root)
	require.NoError(t, err)

	storedPath, err := files.Save("../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err)
	assert.Equal(t, "images/passwd", storedPath)

	_, err = os.Stat(filepath.Join(root, "passwd"))
	assert.NoError(t, err)
}

func TestRemoveCannotEscapeRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	files, err := New(root)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	// Only the base name is honored, so the path resolves inside the
	// storage directory and the removal fails with "not exist".
	err = files.Remove("../outside.txt")
	assert.Error(t, err)

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestRemoveRejectsEmptyPath(t *testing.T) {
	files, err := New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	assert.ErrorIs(t, files.Remove(""), ErrInvalidPath)
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "images")

	_, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
