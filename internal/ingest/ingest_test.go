package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestScanDirectory_FiltersTopLevel(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.png", "a")
	touch(t, dir, "b.txt", "b")
	c := touch(t, dir, "c.HEIC", "c")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.jpg"), 0755))
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	touch(t, sub, "e.jpeg", "e")

	files, stats, err := ScanDirectory(dir, ScanOptions{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, a, files[0].Path)
	assert.Equal(t, "png", files[0].Ext)
	assert.Equal(t, c, files[1].Path)
	assert.Equal(t, "heic", files[1].Ext)
	assert.Equal(t, uint32(5), stats.Scanned)
	assert.Equal(t, uint32(2), stats.Matched)
}

func TestScanDirectory_SkipHidden(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, ".x.png", "x")
	touch(t, dir, "y.jpg", "y")

	files, _, err := ScanDirectory(dir, ScanOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, stats, err := ScanDirectory(dir, ScanOptions{SkipHidden: true})
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, uint32(1), stats.Hidden)
}

func TestScanDirectory_Errors(t *testing.T) {
	_, _, err := ScanDirectory("  ", ScanOptions{})
	assert.ErrorIs(t, err, ErrNoRoot)

	_, _, err = ScanDirectory(filepath.Join(t.TempDir(), "nope"), ScanOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	h1, err := HashFile(touch(t, dir, "a.png", "abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h1)

	h2, err := HashFile(touch(t, dir, "copy.png", "abc"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = HashFile(filepath.Join(dir, "gone.png"))
	assert.Error(t, err)
}

func TestStartWatcher(t *testing.T) {
	dir := t.TempDir()
	existing := touch(t, dir, "old.png", "o")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Root: dir, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}

	assert.Equal(t, existing, next())

	touch(t, dir, "notes.txt", "ignored")
	fresh := touch(t, dir, "new.JPG", "n")
	assert.Equal(t, fresh, next())

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoot(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.ErrorIs(t, err, ErrNoRoot)
}
