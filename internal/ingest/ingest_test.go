package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/audity/constants"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "a.PNG"), "a")
	touch(t, filepath.Join(root, "notes.txt"), "skip")
	touch(t, filepath.Join(root, ".hidden.pdf"), "skip")
	touch(t, filepath.Join(root, ".cache", "c.pdf"), "skip")
	touch(t, filepath.Join(root, "sub", "c.jpg"), "c")

	docs, stats, failed, err := NewFSIngestor(nil).LoadDirectory(root, true)
	require.NoError(t, err)
	assert.Empty(t, failed)

	var names []string
	for _, d := range docs {
		names = append(names, d.Filename)
	}
	assert.Equal(t, []string{"a.PNG", "b.pdf", "c.jpg"}, names)
	assert.Equal(t, constants.IMAGE, docs[0].Format)
	assert.Equal(t, constants.PDF, docs[1].Format)
	assert.Equal(t, []byte("b"), docs[1].Body)
	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 3, stats.Succeeded)
}

func TestLoadDirectoryIncludesHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".hidden.pdf"), "h")

	docs, _, _, err := NewFSIngestor(nil).LoadDirectory(root, false)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadDirectoryErrors(t *testing.T) {
	_, _, _, err := NewFSIngestor(nil).LoadDirectory("  ", true)
	assert.Error(t, err)

	_, _, _, err = NewFSIngestor(nil).LoadDirectory(filepath.Join(t.TempDir(), "nope"), true)
	assert.Error(t, err)
}

func TestLoadPathsKeepsOrder(t *testing.T) {
	root := t.TempDir()
	z := filepath.Join(root, "z.pdf")
	a := filepath.Join(root, "a.docx")
	touch(t, z, "z")
	touch(t, a, "a")

	docs, failed := NewFSIngestor(nil).LoadPaths([]string{z, filepath.Join(root, "missing.pdf"), a})
	require.Len(t, docs, 2)
	assert.Equal(t, "z.pdf", docs[0].Filename)
	assert.Equal(t, "a.docx", docs[1].Filename)
	assert.Empty(t, docs[1].Format)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Path, "missing.pdf")
}

func TestLoadFileSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	touch(t, path, "0123456789")

	ing := NewFSIngestor(nil)
	ing.MaxBytes = 4
	_, err := ing.LoadFile(path)
	assert.Error(t, err)
}

func TestWatcherBatches(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case b := <-batches:
		require.Len(t, b, 1)
		assert.Equal(t, "existing.pdf", filepath.Base(b[0]))
	case <-time.After(5 * time.Second):
		t.Fatal("initial batch not delivered")
	}

	touch(t, filepath.Join(root, "new.png"), "n")
	touch(t, filepath.Join(root, "ignored.txt"), "i")

	select {
	case b := <-batches:
		require.Len(t, b, 1)
		assert.Equal(t, "new.png", filepath.Base(b[0]))
	case <-time.After(5 * time.Second):
		t.Fatal("new file batch not delivered")
	}

	cancel()
	for range batches {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
