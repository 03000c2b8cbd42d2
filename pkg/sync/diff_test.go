package sync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// manifest builds a manifest from "path=digestbyte" file entries and "dir/" entries
func manifest(entries ...string) *models.Manifest {
	m := models.NewManifest()
	for _, e := range entries {
		if strings.HasSuffix(e, "/") {
			m.AddDir(strings.TrimSuffix(e, "/"))
			continue
		}
		name, content, _ := strings.Cut(e, "=")
		var d models.Digest
		copy(d[:], content)
		m.AddFile(name, d)
	}
	return m
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		source   *models.Manifest
		replica  *models.Manifest
		expected []models.Action
	}{
		{
			name:     "BothEmpty",
			source:   manifest(),
			replica:  manifest(),
			expected: nil,
		},
		{
			name:     "NewFile",
			source:   manifest("a.txt=hi"),
			replica:  manifest(),
			expected: []models.Action{act(models.ActionCreateFile, "a.txt")},
		},
		{
			name:     "Unchanged",
			source:   manifest("a.txt=hi", "d/"),
			replica:  manifest("a.txt=hi", "d/"),
			expected: nil,
		},
		{
			name:     "ChangedContent",
			source:   manifest("a.txt=v2"),
			replica:  manifest("a.txt=v1"),
			expected: []models.Action{act(models.ActionUpdateFile, "a.txt")},
		},
		{
			name:    "StaleDirectory",
			source:  manifest(),
			replica: manifest("old/", "old/stale.txt=x"),
			expected: []models.Action{
				act(models.ActionDeleteFile, "old/stale.txt"),
				act(models.ActionDeleteDir, "old"),
			},
		},
		{
			name:     "EmptyDirectory",
			source:   manifest("logs/"),
			replica:  manifest(),
			expected: []models.Action{act(models.ActionCreateDir, "logs")},
		},
		{
			name:    "NestedDirectoriesCreatedParentsFirst",
			source:  manifest("a/b/c/", "a/", "a/b/"),
			replica: manifest(),
			expected: []models.Action{
				act(models.ActionCreateDir, "a"),
				act(models.ActionCreateDir, "a/b"),
				act(models.ActionCreateDir, "a/b/c"),
			},
		},
		{
			name:    "NestedDirectoriesRemovedChildrenFirst",
			source:  manifest(),
			replica: manifest("a/", "a/b/", "a/b/c/", "a-b/"),
			expected: []models.Action{
				act(models.ActionDeleteDir, "a/b/c"),
				act(models.ActionDeleteDir, "a/b"),
				act(models.ActionDeleteDir, "a-b"),
				act(models.ActionDeleteDir, "a"),
			},
		},
		{
			name:    "MixedOrdering",
			source:  manifest("new.txt=n", "keep.txt=k", "mod.txt=2", "fresh/"),
			replica: manifest("keep.txt=k", "mod.txt=1", "gone.txt=g", "old/"),
			expected: []models.Action{
				act(models.ActionUpdateFile, "mod.txt"),
				act(models.ActionCreateFile, "new.txt"),
				act(models.ActionCreateDir, "fresh"),
				act(models.ActionDeleteFile, "gone.txt"),
				act(models.ActionDeleteDir, "old"),
			},
		},
		{
			name:    "SourceFileReplicaDir",
			source:  manifest("p=new"),
			replica: manifest("p/", "p/q/", "p/q/r.txt=r", "p/s.txt=s"),
			expected: []models.Action{
				act(models.ActionDeleteFile, "p/q/r.txt"),
				act(models.ActionDeleteFile, "p/s.txt"),
				act(models.ActionDeleteDir, "p/q"),
				act(models.ActionDeleteDir, "p"),
				act(models.ActionCreateFile, "p"),
			},
		},
		{
			name:    "SourceDirReplicaFile",
			source:  manifest("p/", "p/inner.txt=i"),
			replica: manifest("p=old"),
			expected: []models.Action{
				act(models.ActionDeleteFile, "p"),
				act(models.ActionCreateFile, "p/inner.txt"),
				act(models.ActionCreateDir, "p"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Diff(tt.source, tt.replica))
		})
	}
}

func TestDiffDeterministic(t *testing.T) {
	source := manifest("a=1", "b=2", "c/", "c/d=3", "e/")
	replica := manifest("x=1", "y/", "y/z=2", "b=9")

	first := Diff(source, replica)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diff(source, replica))
	}
}

func TestDiffIdenticalManifestsIsEmpty(t *testing.T) {
	m := manifest("a=1", "b/", "b/c=2", "b/d/")
	assert.Empty(t, Diff(m, m))
}

func TestDiffMinimality(t *testing.T) {
	source := manifest("same.txt=s", "dir/", "dir/same.txt=t", "changed.txt=2")
	replica := manifest("same.txt=s", "dir/", "dir/same.txt=t", "changed.txt=1")

	for _, a := range Diff(source, replica) {
		assert.Equal(t, "changed.txt", a.Path, "unexpected action %s", a)
	}
}

// Deleting a directory must come after every removal inside it
func TestDiffOrderingSafety(t *testing.T) {
	source := manifest("p=file")
	replica := manifest("old/", "old/a/", "old/a/f=1", "old/g=2", "p/", "p/x=3", "keep/", "keep/stale=4")
	source.AddDir("keep")

	actions := Diff(source, replica)
	for i, a := range actions {
		if a.Kind != models.ActionDeleteDir {
			continue
		}
		prefix := a.Path + "/"
		for _, later := range actions[i+1:] {
			if later.Kind == models.ActionDeleteFile || later.Kind == models.ActionDeleteDir {
				assert.False(t, strings.HasPrefix(later.Path, prefix),
					"%s scheduled after %s", later, a)
			}
		}
	}
}

func TestDiffKeepsDirectoriesHoldingExcludedEntries(t *testing.T) {
	source := manifest("a.txt=1", "conflict=2")
	replica := manifest("old/", "old/sub/", "old/stale.txt=3", "gone/", "conflict/")
	replica.AddExcluded("old/sub/cache.tmp")
	replica.AddExcluded("conflict/.git")

	assert.Equal(t, []models.Action{
		act(models.ActionCreateFile, "a.txt"),
		act(models.ActionCreateFile, "conflict"),
		act(models.ActionDeleteFile, "old/stale.txt"),
		act(models.ActionDeleteDir, "gone"),
	}, Diff(source, replica))
}
