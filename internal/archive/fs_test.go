package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/archive"
)

func TestFSStoreSavesUnderJobDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := archive.NewFS(archive.FSConfig{BaseDir: dir})
	require.NoError(t, err)

	uri, err := store.Save(context.Background(), "KM4521", []byte("<html>detail</html>"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"), "uri %q", uri)

	entries, err := os.ReadDir(filepath.Join(dir, "KM4521"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".html"))

	body, err := os.ReadFile(filepath.Join(dir, "KM4521", entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "<html>detail</html>", string(body))
}

func TestFSStoreRejectsPathSeparatorsInJobNumber(t *testing.T) {
	store, err := archive.NewFS(archive.FSConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape", []byte("x"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "", []byte("x"))
	require.Error(t, err)
}

func TestNewFSCreatesMissingBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	_, err := archive.NewFS(archive.FSConfig{BaseDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFSRequiresBaseDir(t *testing.T) {
	_, err := archive.NewFS(archive.FSConfig{})
	require.Error(t, err)
}

func TestNoOpStoreDiscards(t *testing.T) {
	var store archive.NoOpStore
	uri, err := store.Save(context.Background(), "KM4521", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, uri)
}
