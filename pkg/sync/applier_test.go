package sync

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/storage"
)

func newTestTrees() (*storage.Tree, *storage.Tree) {
	return storage.NewMemory("source"), storage.NewMemory("replica")
}

func TestApplierCreateFile(t *testing.T) {
	src, rep := newTestTrees()
	writeFile(t, src, "deep/nested/a.txt", "hello")

	sink := &recordingSink{}
	n, err := NewApplier(src, rep, nil).Apply(context.Background(), act(models.ActionCreateFile, "deep/nested/a.txt"), sink)
	require.NoError(t, err)

	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", readFile(t, rep, "deep/nested/a.txt"))
	assert.Equal(t, []string{"created deep/nested/a.txt"}, sink.summary())
}

func TestApplierUpdateFile(t *testing.T) {
	src, rep := newTestTrees()
	writeFile(t, src, "a.txt", "v2")
	writeFile(t, rep, "a.txt", "v1-longer")

	sink := &recordingSink{}
	_, err := NewApplier(src, rep, nil).Apply(context.Background(), act(models.ActionUpdateFile, "a.txt"), sink)
	require.NoError(t, err)

	assert.Equal(t, "v2", readFile(t, rep, "a.txt"))
	assert.Equal(t, []string{"updated a.txt"}, sink.summary())
}

func TestApplierCreateDirIdempotent(t *testing.T) {
	src, rep := newTestTrees()
	applier := NewApplier(src, rep, nil)
	sink := &recordingSink{}

	for i := 0; i < 2; i++ {
		_, err := applier.Apply(context.Background(), act(models.ActionCreateDir, "logs/app"), sink)
		require.NoError(t, err)
	}

	info, err := rep.Lstat("logs/app")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{"created logs/app", "created logs/app"}, sink.summary())
}

func TestApplierDelete(t *testing.T) {
	src, rep := newTestTrees()
	writeFile(t, rep, "old/stale.txt", "x")
	applier := NewApplier(src, rep, nil)
	sink := &recordingSink{}

	t.Run("DirNotEmpty", func(t *testing.T) {
		_, err := applier.Apply(context.Background(), act(models.ActionDeleteDir, "old"), sink)

		var applyErr *models.ApplyError
		require.ErrorAs(t, err, &applyErr)
		assert.Equal(t, models.FailureNotEmpty, applyErr.Kind)
		assert.True(t, exists(t, rep, "old/stale.txt"))
		assert.Empty(t, sink.summary())
	})

	t.Run("FileThenDir", func(t *testing.T) {
		_, err := applier.Apply(context.Background(), act(models.ActionDeleteFile, "old/stale.txt"), sink)
		require.NoError(t, err)
		_, err = applier.Apply(context.Background(), act(models.ActionDeleteDir, "old"), sink)
		require.NoError(t, err)

		assert.False(t, exists(t, rep, "old"))
		assert.Equal(t, []string{"removed old/stale.txt", "removed old"}, sink.summary())
	})
}

func TestApplierMissingSource(t *testing.T) {
	src, rep := newTestTrees()
	sink := &recordingSink{}

	_, err := NewApplier(src, rep, nil).Apply(context.Background(), act(models.ActionCreateFile, "gone.txt"), sink)

	var applyErr *models.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, models.FailureIO, applyErr.Kind)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, sink.summary())
}

func TestApplierPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	srcDir, repDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Chmod(repDir, 0555))
	t.Cleanup(func() { _ = os.Chmod(repDir, 0755) })

	src, err := storage.NewLocal(srcDir)
	require.NoError(t, err)
	rep, err := storage.NewLocal(repDir)
	require.NoError(t, err)

	_, err = NewApplier(src, rep, nil).Apply(context.Background(), act(models.ActionCreateFile, "a.txt"), nil)

	var applyErr *models.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, models.FailurePermission, applyErr.Kind)
}

func TestApplierReaderWrapper(t *testing.T) {
	src, rep := newTestTrees()
	writeFile(t, src, "a.txt", "payload")

	var wrapped int
	applier := NewApplier(src, rep, nil)
	applier.SetReaderWrapper(func(r io.Reader) io.Reader {
		wrapped++
		return r
	})

	_, err := applier.Apply(context.Background(), act(models.ActionCreateFile, "a.txt"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, wrapped)
	assert.Equal(t, "payload", readFile(t, rep, "a.txt"))
}
