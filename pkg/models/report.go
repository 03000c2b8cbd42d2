package models

import (
	"time"
)

// PassReport represents the results of one synchronization pass
type PassReport struct {
	// Pass details
	ID          string
	SourcePath  string
	ReplicaPath string
	DryRun      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Actions planned by the diff, in apply order
	Actions []Action

	// Statistics
	Stats Statistics

	// Actions that could not be applied
	Failures []Failure

	// Overall status
	Status Status

	// Err is the pass-level error for failed or cancelled passes
	Err error
}

// Statistics holds pass metrics
type Statistics struct {
	SourceFiles  int
	SourceDirs   int
	ReplicaFiles int
	ReplicaDirs  int

	FilesCreated int
	FilesUpdated int
	FilesRemoved int
	DirsCreated  int
	DirsRemoved  int
	Failed       int

	BytesCopied int64
}

// Applied returns the number of actions applied successfully
func (s Statistics) Applied() int {
	return s.FilesCreated + s.FilesUpdated + s.FilesRemoved + s.DirsCreated + s.DirsRemoved
}

// Count records one applied action
func (s *Statistics) Count(kind ActionKind) {
	switch kind {
	case ActionCreateFile:
		s.FilesCreated++
	case ActionUpdateFile:
		s.FilesUpdated++
	case ActionDeleteFile:
		s.FilesRemoved++
	case ActionCreateDir:
		s.DirsCreated++
	case ActionDeleteDir:
		s.DirsRemoved++
	}
}

// Status represents the overall result of a pass
type Status string

const (
	// StatusSuccess indicates all actions were applied
	StatusSuccess Status = "success"
	// StatusPartial indicates some actions failed; the next pass is expected to converge
	StatusPartial Status = "partial"
	// StatusFailed indicates the pass aborted before applying anything
	StatusFailed Status = "failed"
	// StatusCancelled indicates the pass was interrupted between actions
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
