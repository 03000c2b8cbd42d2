package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath cleans a path for the current platform and makes it absolute
func NormalizePath(path string) (string, error) {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" && IsUNCPath(path) && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\`)
	}

	if IsUNCPath(normalized) {
		return normalized, nil
	}
	return filepath.Abs(normalized)
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// ValidateRoots checks that source and replica are usable as a mirror pair:
// both exist and are directories, they differ, and neither contains the other.
// It returns the absolute roots with symbolic links resolved.
func ValidateRoots(source, replica string) (string, string, error) {
	src, err := validateRoot("source", source)
	if err != nil {
		return "", "", err
	}
	rep, err := validateRoot("replica", replica)
	if err != nil {
		return "", "", err
	}

	if samePath(src, rep) {
		return "", "", &PathError{Path: rep, Message: "source and replica cannot be the same directory"}
	}
	if within(rep, src) {
		return "", "", &PathError{Path: rep, Message: "replica cannot be inside the source directory"}
	}
	if within(src, rep) {
		return "", "", &PathError{Path: src, Message: "source cannot be inside the replica directory"}
	}

	return src, rep, nil
}

func validateRoot(role, path string) (string, error) {
	if path == "" {
		return "", &PathError{Path: path, Message: role + " path is empty"}
	}

	abs, err := NormalizePath(path)
	if err != nil {
		return "", &PathError{Path: path, Message: "cannot resolve " + role + " path", Err: err}
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &PathError{Path: abs, Message: role + " does not exist", Err: err}
	}
	if err != nil {
		return "", &PathError{Path: abs, Message: "cannot access " + role, Err: err}
	}
	if !info.IsDir() {
		return "", &PathError{Path: abs, Message: role + " is not a directory"}
	}

	// Compare and scan the real location, not the link
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &PathError{Path: abs, Message: "cannot resolve " + role + " path", Err: err}
	}
	return resolved, nil
}

// within reports whether child lies strictly below parent
func within(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
	Err     error
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}

func (e *PathError) Unwrap() error {
	return e.Err
}
