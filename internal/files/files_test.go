package files

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscovery_FindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.csv"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.CSV"), []byte("c"), 0644))

	// Make ordering deterministic regardless of filesystem timestamp
	// granularity.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	d := NewDiscovery(dir)
	files, err := d.FindCSVFiles(".")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "new.CSV", files[0].Name)
	assert.Equal(t, "old.csv", files[1].Name)
}

func TestDiscovery_MostRecentCSV_Empty(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.MostRecentCSV(".")
	assert.Error(t, err)
}

func TestManager_Archive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	m := NewManager(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	target, err := m.Archive(src)
	require.NoError(t, err)

	assert.NoFileExists(t, src)
	assert.FileExists(t, target)
	assert.Equal(t, filepath.Join(dir, "archive"), filepath.Dir(target))
}
