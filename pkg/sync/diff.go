package sync

import (
	"sort"
	"strings"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// Diff compares a source manifest against a replica manifest and returns the
// actions that make the replica match the source, in apply order:
//
//  1. removals of replica entries that block a source entry of the other type
//  2. file creations and updates
//  3. directory creations, parents first
//  4. file removals
//  5. directory removals, children first
//
// Directories are therefore empty by the time they are removed. A replica
// directory still holding excluded entries is never removed: the pass leaves
// it in place instead of failing on it every time. Unchanged paths produce
// no action. Diff performs no I/O.
func Diff(source, replica *models.Manifest) []models.Action {
	var actions []models.Action

	// Entries of the replica already scheduled for removal by step 1
	cleared := make(map[string]struct{})
	pinned := replica.Pinned()
	isPinned := func(p string) bool {
		_, ok := pinned[p]
		return ok
	}

	// A source file where the replica has a directory: empty out and remove
	// the directory subtree before the file is created. A pinned directory
	// cannot be emptied; the file creation is left to fail and be reported.
	for _, p := range source.SortedFiles() {
		if !replica.HasDir(p) || isPinned(p) {
			continue
		}
		prefix := p + "/"
		for _, f := range replica.SortedFiles() {
			if strings.HasPrefix(f, prefix) {
				actions = append(actions, models.Action{Kind: models.ActionDeleteFile, Path: f})
				cleared[f] = struct{}{}
			}
		}
		var dirs []string
		for _, d := range replica.SortedDirs() {
			if d == p || strings.HasPrefix(d, prefix) {
				dirs = append(dirs, d)
			}
		}
		for _, d := range childrenFirst(dirs) {
			actions = append(actions, models.Action{Kind: models.ActionDeleteDir, Path: d})
			cleared[d] = struct{}{}
		}
	}

	// A source directory where the replica has a file: remove the file first.
	for _, p := range source.SortedDirs() {
		if replica.HasFile(p) {
			actions = append(actions, models.Action{Kind: models.ActionDeleteFile, Path: p})
			cleared[p] = struct{}{}
		}
	}

	isCleared := func(p string) bool {
		_, ok := cleared[p]
		return ok
	}

	for _, p := range source.SortedFiles() {
		rd, ok := replica.Files[p]
		switch {
		case !ok || isCleared(p):
			actions = append(actions, models.Action{Kind: models.ActionCreateFile, Path: p})
		case rd != source.Files[p]:
			actions = append(actions, models.Action{Kind: models.ActionUpdateFile, Path: p})
		}
	}

	for _, p := range source.SortedDirs() {
		if !replica.HasDir(p) || isCleared(p) {
			actions = append(actions, models.Action{Kind: models.ActionCreateDir, Path: p})
		}
	}

	for _, p := range replica.SortedFiles() {
		if !source.HasFile(p) && !isCleared(p) {
			actions = append(actions, models.Action{Kind: models.ActionDeleteFile, Path: p})
		}
	}

	var stale []string
	for _, p := range replica.SortedDirs() {
		if !source.HasDir(p) && !isCleared(p) && !isPinned(p) {
			stale = append(stale, p)
		}
	}
	for _, p := range childrenFirst(stale) {
		actions = append(actions, models.Action{Kind: models.ActionDeleteDir, Path: p})
	}

	return actions
}

// childrenFirst orders paths so that every directory precedes its ancestors.
// A path sorts lexically after any of its prefixes, so reverse order suffices.
func childrenFirst(paths []string) []string {
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths
}
