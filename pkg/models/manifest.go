package models

import (
	"encoding/hex"
	"path"
	"sort"
)

// DigestSize is the length in bytes of a content digest (128 bits)
const DigestSize = 16

// Digest is a fixed-size fingerprint of file content
type Digest [DigestSize]byte

// String returns the digest as lowercase hex
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is unset
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Manifest is a snapshot of one tree: relative file paths mapped to their
// content digest, plus the set of relative directory paths.
// Paths are slash-separated and relative to the tree root.
//
// Excluded lists entries that exist on disk but were left out by exclude
// patterns. They take no part in comparison; they only keep their parent
// directories from being removed.
type Manifest struct {
	Files    map[string]Digest
	Dirs     map[string]struct{}
	Excluded map[string]struct{}
}

// NewManifest creates an empty manifest
func NewManifest() *Manifest {
	return &Manifest{
		Files: make(map[string]Digest),
		Dirs:  make(map[string]struct{}),
	}
}

// AddFile records a file and its digest
func (m *Manifest) AddFile(path string, digest Digest) {
	m.Files[path] = digest
}

// AddDir records a directory
func (m *Manifest) AddDir(path string) {
	m.Dirs[path] = struct{}{}
}

// AddExcluded records an entry skipped by an exclude pattern
func (m *Manifest) AddExcluded(path string) {
	if m.Excluded == nil {
		m.Excluded = make(map[string]struct{})
	}
	m.Excluded[path] = struct{}{}
}

// Pinned returns every directory holding an excluded entry at any depth.
// Such directories can never be emptied by a pass.
func (m *Manifest) Pinned() map[string]struct{} {
	pinned := make(map[string]struct{})
	for p := range m.Excluded {
		for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, ok := pinned[dir]; ok {
				break
			}
			pinned[dir] = struct{}{}
		}
	}
	return pinned
}

// HasFile reports whether path is a file in the manifest
func (m *Manifest) HasFile(path string) bool {
	_, ok := m.Files[path]
	return ok
}

// HasDir reports whether path is a directory in the manifest
func (m *Manifest) HasDir(path string) bool {
	_, ok := m.Dirs[path]
	return ok
}

// Len returns the number of entries (files and directories)
func (m *Manifest) Len() int {
	return len(m.Files) + len(m.Dirs)
}

// SortedFiles returns file paths in lexical order
func (m *Manifest) SortedFiles() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SortedDirs returns directory paths in lexical order.
// A parent always sorts before its children.
func (m *Manifest) SortedDirs() []string {
	paths := make([]string, 0, len(m.Dirs))
	for p := range m.Dirs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Equal reports whether both manifests hold the same files, digests and directories.
// Excluded entries are ignored.
func (m *Manifest) Equal(other *Manifest) bool {
	if len(m.Files) != len(other.Files) || len(m.Dirs) != len(other.Dirs) {
		return false
	}
	for p, d := range m.Files {
		if od, ok := other.Files[p]; !ok || od != d {
			return false
		}
	}
	for p := range m.Dirs {
		if !other.HasDir(p) {
			return false
		}
	}
	return true
}
