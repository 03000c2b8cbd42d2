package models

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrNotEmpty is returned when a directory scheduled for removal still has entries
var ErrNotEmpty = errors.New("directory not empty")

// ScanError aborts a pass: a tree root is missing, is not a directory,
// or a directory inside it could not be read.
type ScanError struct {
	Root string
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
	}
	return fmt.Sprintf("scan %s: %s: %v", e.Root, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// HashError aborts a pass: a file could not be read while computing its digest
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash %s: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error {
	return e.Err
}

// FailureKind categorizes why an action could not be applied
type FailureKind string

const (
	FailureIO         FailureKind = "io"
	FailurePermission FailureKind = "permission"
	FailureNotEmpty   FailureKind = "not_empty"
)

// ApplyError is the failure of a single action. It never aborts the pass.
type ApplyError struct {
	Action Action
	Kind   FailureKind
	Err    error
}

// NewApplyError classifies err and wraps it for action
func NewApplyError(action Action, err error) *ApplyError {
	return &ApplyError{Action: action, Kind: ClassifyFailure(err), Err: err}
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Action.Kind, e.Action.Path, e.Kind, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ClassifyFailure maps an error to a failure kind
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNotEmpty):
		return FailureNotEmpty
	case errors.Is(err, fs.ErrPermission):
		return FailurePermission
	default:
		return FailureIO
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
