package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// tempPrefix marks in-flight copies inside the replica
const tempPrefix = ".foldermirror-tmp-"

// Tree is a directory tree addressed by slash-separated paths relative to its root
type Tree struct {
	root string
	fs   billy.Filesystem
}

// New wraps an existing billy filesystem rooted at the tree root
func New(root string, fsys billy.Filesystem) *Tree {
	return &Tree{root: root, fs: fsys}
}

// NewLocal creates a tree backed by the local filesystem. A root reached
// through symbolic links is resolved first; links inside the tree are not.
func NewLocal(rootPath string) (*Tree, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return New(absPath, osfs.New(absPath)), nil
}

// NewMemory creates an empty in-memory tree
func NewMemory(name string) *Tree {
	fsys := memfs.New()
	// memfs has no root entry until something is created under it
	_ = fsys.MkdirAll(".", 0755)
	return New(name, fsys)
}

// Root returns the display root of the tree
func (t *Tree) Root() string {
	return t.root
}

// FS returns the underlying filesystem
func (t *Tree) FS() billy.Filesystem {
	return t.fs
}

// Lstat returns metadata without following symbolic links
func (t *Tree) Lstat(rel string) (os.FileInfo, error) {
	return t.fs.Lstat(native(rel))
}

// Stat returns file metadata
func (t *Tree) Stat(rel string) (os.FileInfo, error) {
	return t.fs.Stat(native(rel))
}

// Open opens a file for reading
func (t *Tree) Open(rel string) (billy.File, error) {
	return t.fs.Open(native(rel))
}

// Exists checks if a file or directory exists
func (t *Tree) Exists(rel string) (bool, error) {
	_, err := t.fs.Lstat(native(rel))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Walk visits every entry below the root in lexical order. Symbolic links are
// reported but never followed. Paths passed to fn are slash-separated and
// relative; the root itself is not reported.
func (t *Tree) Walk(ctx context.Context, fn func(rel string, info os.FileInfo) error) error {
	return util.Walk(t.fs, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel := filepath.ToSlash(p)
		if rel == "." {
			return nil
		}
		return fn(rel, info)
	})
}

// Write replaces the file at rel with the content of r. Content goes to a
// temporary file in the destination directory which is then renamed over the
// destination, so readers never observe a partially written file.
func (t *Tree) Write(ctx context.Context, rel string, r io.Reader) (int64, error) {
	dst := native(rel)
	dir := native(path.Dir(rel))

	if err := t.fs.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := t.fs.TempFile(dir, tempPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = t.fs.Remove(tmpName)
	}()

	written, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if err != nil {
		_ = tmp.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := t.fs.Rename(tmpName, dst); err != nil {
		return written, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return written, nil
}

// Preserve copies modification time and permission bits from info onto rel.
// Filesystems without billy.Change support are left untouched.
func (t *Tree) Preserve(rel string, info os.FileInfo) error {
	change, ok := t.fs.(billy.Change)
	if !ok || info == nil {
		return nil
	}

	name := native(rel)
	if err := change.Chmod(name, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if !info.ModTime().IsZero() {
		if err := change.Chtimes(name, info.ModTime(), info.ModTime()); err != nil {
			return fmt.Errorf("failed to set modification time: %w", err)
		}
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (t *Tree) MkdirAll(rel string) error {
	if err := t.fs.MkdirAll(native(rel), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// RemoveFile removes a single file
func (t *Tree) RemoveFile(rel string) error {
	if err := t.fs.Remove(native(rel)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveDir removes a directory that must already be empty.
// It returns models.ErrNotEmpty when entries remain.
func (t *Tree) RemoveDir(rel string) error {
	name := native(rel)

	entries, err := t.fs.ReadDir(name)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("failed to delete directory (%d entries): %w", len(entries), models.ErrNotEmpty)
	}

	if err := t.fs.Remove(name); err != nil {
		return fmt.Errorf("failed to delete directory: %w", err)
	}
	return nil
}

// native converts a slash-separated relative path for the filesystem
func native(rel string) string {
	if rel == "" {
		return "."
	}
	return filepath.FromSlash(rel)
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
