package sync

import (
	"path"
	"strings"
)

// excluder decides which relative paths are left out of a manifest.
// Patterns support:
//   - Simple glob patterns matched against the base name: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/ (the directory and everything below it)
//   - Path patterns matched against the whole relative path: build/*
//   - Any-depth patterns: **/cache
type excluder struct {
	dirs     []string
	anyDepth []string
	paths    []string
	names    []string
}

func newExcluder(patterns []string) *excluder {
	e := &excluder{}
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		switch {
		case p == "":
		case strings.HasSuffix(p, "/"):
			e.dirs = append(e.dirs, strings.TrimSuffix(p, "/"))
		case strings.HasPrefix(p, "**/"):
			e.anyDepth = append(e.anyDepth, strings.TrimPrefix(p, "**/"))
		case strings.Contains(p, "/"):
			e.paths = append(e.paths, p)
		default:
			e.names = append(e.names, p)
		}
	}
	return e
}

func (e *excluder) empty() bool {
	return len(e.dirs)+len(e.anyDepth)+len(e.paths)+len(e.names) == 0
}

// match reports whether rel (slash-separated) is excluded
func (e *excluder) match(rel string) bool {
	if e.empty() {
		return false
	}

	base := path.Base(rel)

	for _, d := range e.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") ||
			strings.Contains(rel, "/"+d+"/") || strings.HasSuffix(rel, "/"+d) {
			return true
		}
	}

	for _, p := range e.anyDepth {
		if glob(p, base) || glob(p, rel) || strings.HasSuffix(rel, "/"+p) {
			return true
		}
		if !strings.Contains(p, "/") {
			for _, part := range strings.Split(rel, "/") {
				if glob(p, part) {
					return true
				}
			}
		}
	}

	for _, p := range e.paths {
		if glob(p, rel) {
			return true
		}
	}

	for _, p := range e.names {
		if glob(p, base) {
			return true
		}
	}

	return false
}

func glob(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}
