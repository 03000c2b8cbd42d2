package sync

import (
	"context"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/storage"
)

// writeFile creates a file (and its parents) inside tree
func writeFile(t *testing.T, tree *storage.Tree, rel, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(tree.FS(), filepath.FromSlash(rel), []byte(content), 0644))
}

// mkdir creates a directory (and its parents) inside tree
func mkdir(t *testing.T, tree *storage.Tree, rel string) {
	t.Helper()
	require.NoError(t, tree.MkdirAll(rel))
}

// readFile returns the content of a file inside tree
func readFile(t *testing.T, tree *storage.Tree, rel string) string {
	t.Helper()
	data, err := util.ReadFile(tree.FS(), filepath.FromSlash(rel))
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, tree *storage.Tree, rel string) bool {
	t.Helper()
	ok, err := tree.Exists(rel)
	require.NoError(t, err)
	return ok
}

func newTestScanner() *Scanner {
	return NewScanner(digest.NewHasher(digest.XXH3, 0), 4, nil, nil)
}

func scan(t *testing.T, tree *storage.Tree) *models.Manifest {
	t.Helper()
	m, err := newTestScanner().Scan(context.Background(), tree)
	require.NoError(t, err)
	return m
}

// recordingSink collects everything reported during a pass
type recordingSink struct {
	mu        gosync.Mutex
	events    []models.Event
	failures  []models.Failure
	started   []int
	completed []*models.PassReport
}

func (s *recordingSink) Record(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) RecordFailure(failure models.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure)
}

func (s *recordingSink) PassStarted(id string, planned int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, planned)
}

func (s *recordingSink) PassCompleted(report *models.PassReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, report)
}

// summary renders events as "kind path" for compact assertions
func (s *recordingSink) summary() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, string(e.Kind)+" "+e.Path)
	}
	return out
}

func act(kind models.ActionKind, path string) models.Action {
	return models.Action{Kind: kind, Path: path}
}

func stringReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
