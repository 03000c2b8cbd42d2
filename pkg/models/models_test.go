package models

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestString(t *testing.T) {
	var d Digest
	assert.True(t, d.IsZero())
	assert.Equal(t, "00000000000000000000000000000000", d.String())

	d[0] = 0xab
	d[15] = 0x01
	assert.False(t, d.IsZero())
	assert.Equal(t, "ab000000000000000000000000000001", d.String())
}

func TestManifest(t *testing.T) {
	t.Run("AddAndQuery", func(t *testing.T) {
		m := NewManifest()
		m.AddFile("a.txt", Digest{1})
		m.AddDir("docs")

		assert.True(t, m.HasFile("a.txt"))
		assert.False(t, m.HasFile("docs"))
		assert.True(t, m.HasDir("docs"))
		assert.False(t, m.HasDir("a.txt"))
		assert.Equal(t, 2, m.Len())
	})

	t.Run("SortedDirsParentFirst", func(t *testing.T) {
		m := NewManifest()
		m.AddDir("a/b")
		m.AddDir("a-b")
		m.AddDir("a")
		assert.Equal(t, []string{"a", "a-b", "a/b"}, m.SortedDirs())
	})

	t.Run("PinnedByExcluded", func(t *testing.T) {
		m := NewManifest()
		assert.Empty(t, m.Pinned())

		m.AddExcluded("a/b/cache.tmp")
		m.AddExcluded("a/.git")
		m.AddExcluded("top.tmp")
		assert.Equal(t, map[string]struct{}{"a": {}, "a/b": {}}, m.Pinned())
	})

	t.Run("Equal", func(t *testing.T) {
		a := NewManifest()
		a.AddFile("x", Digest{1})
		a.AddDir("d")

		b := NewManifest()
		b.AddFile("x", Digest{1})
		b.AddDir("d")
		assert.True(t, a.Equal(b))

		b.AddFile("x", Digest{2})
		assert.False(t, a.Equal(b))

		c := NewManifest()
		c.AddFile("x", Digest{1})
		c.AddDir("e")
		assert.False(t, a.Equal(c))
	})
}

func TestActionEventKind(t *testing.T) {
	tests := []struct {
		kind     ActionKind
		expected EventKind
	}{
		{ActionCreateFile, EventCreated},
		{ActionCreateDir, EventCreated},
		{ActionUpdateFile, EventUpdated},
		{ActionDeleteFile, EventRemoved},
		{ActionDeleteDir, EventRemoved},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, Action{Kind: tt.kind, Path: "p"}.EventKind())
		})
	}

	assert.Panics(t, func() { Action{Kind: "bogus"}.EventKind() })
}

func TestEventMessage(t *testing.T) {
	assert.Equal(t, "File/Folder a/b.txt created.", NewEvent("a/b.txt", EventCreated).Message())
	assert.Equal(t, "File/Folder old removed.", NewEvent("old", EventRemoved).Message())
}

func TestFailureMessage(t *testing.T) {
	action := Action{Kind: ActionDeleteDir, Path: "old"}
	cause := fmt.Errorf("failed to delete directory (1 entries): %w", ErrNotEmpty)

	f := Failure{Action: action, Kind: FailureNotEmpty, Err: NewApplyError(action, cause)}
	assert.Equal(t, "Failed to delete_dir old: failed to delete directory (1 entries): directory not empty", f.Message())

	plain := Failure{Action: action, Err: errors.New("disk full")}
	assert.Equal(t, "Failed to delete_dir old: disk full", plain.Message())
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{"NotEmpty", fmt.Errorf("remove: %w", ErrNotEmpty), FailureNotEmpty},
		{"Permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, FailurePermission},
		{"Other", errors.New("disk on fire"), FailureIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyFailure(tt.err))
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	scanErr := &ScanError{Root: "/src", Err: fs.ErrNotExist}
	assert.ErrorIs(t, scanErr, fs.ErrNotExist)
	assert.Equal(t, "scan /src: file does not exist", scanErr.Error())

	hashErr := &HashError{Path: "a.txt", Err: fs.ErrPermission}
	assert.ErrorIs(t, hashErr, fs.ErrPermission)

	applyErr := NewApplyError(Action{Kind: ActionDeleteDir, Path: "old"}, ErrNotEmpty)
	require.Equal(t, FailureNotEmpty, applyErr.Kind)
	assert.ErrorIs(t, applyErr, ErrNotEmpty)
	assert.Contains(t, applyErr.Error(), "delete_dir old")
}

func TestStatistics(t *testing.T) {
	var s Statistics
	for _, k := range []ActionKind{ActionCreateFile, ActionUpdateFile, ActionDeleteFile, ActionCreateDir, ActionDeleteDir, ActionCreateFile} {
		s.Count(k)
	}
	assert.Equal(t, 2, s.FilesCreated)
	assert.Equal(t, 6, s.Applied())
}

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status   Status
		expected int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{Status("weird"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.ExitCode())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "TestField", Message: "test message"}
	assert.Equal(t, "TestField: test message", err.Error())
}
