package models

import (
	"errors"
	"fmt"
	"time"
)

// ActionKind identifies a filesystem operation planned against the replica
type ActionKind string

const (
	// ActionCreateFile copies a file that is missing from the replica
	ActionCreateFile ActionKind = "create_file"
	// ActionUpdateFile overwrites a replica file whose content differs
	ActionUpdateFile ActionKind = "update_file"
	// ActionCreateDir creates a directory missing from the replica
	ActionCreateDir ActionKind = "create_dir"
	// ActionDeleteFile removes a replica file absent from the source
	ActionDeleteFile ActionKind = "delete_file"
	// ActionDeleteDir removes an empty replica directory absent from the source
	ActionDeleteDir ActionKind = "delete_dir"
)

// Action is one planned operation on a relative path
type Action struct {
	Kind ActionKind
	Path string
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s", a.Kind, a.Path)
}

// EventKind returns the kind of event emitted once the action is applied
func (a Action) EventKind() EventKind {
	switch a.Kind {
	case ActionCreateFile, ActionCreateDir:
		return EventCreated
	case ActionUpdateFile:
		return EventUpdated
	case ActionDeleteFile, ActionDeleteDir:
		return EventRemoved
	default:
		panic(fmt.Sprintf("models: unknown action kind %q", a.Kind))
	}
}

// IsFile reports whether the action targets a file
func (a Action) IsFile() bool {
	return a.Kind == ActionCreateFile || a.Kind == ActionUpdateFile || a.Kind == ActionDeleteFile
}

// EventKind is the closed set of changes reported to an event sink
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
)

// Event records a successfully applied action
type Event struct {
	Path string
	Kind EventKind
	Time time.Time
}

// NewEvent creates an event stamped with the current time
func NewEvent(path string, kind EventKind) Event {
	return Event{Path: path, Kind: kind, Time: time.Now()}
}

// Message returns the human-readable log line for the event
func (e Event) Message() string {
	return fmt.Sprintf("File/Folder %s %s.", e.Path, e.Kind)
}

// Failure records an action that could not be applied
type Failure struct {
	Action Action
	Kind   FailureKind
	Err    error
	Time   time.Time
}

// Message returns the human-readable log line for the failure.
// The action is named once even when Err is the *ApplyError describing it.
func (f Failure) Message() string {
	cause := f.Err
	var applyErr *ApplyError
	if errors.As(cause, &applyErr) && applyErr.Err != nil {
		cause = applyErr.Err
	}
	return fmt.Sprintf("Failed to %s %s: %v", f.Action.Kind, f.Action.Path, cause)
}
