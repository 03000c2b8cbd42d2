package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// Formatter renders a synchronization pass for the user. It receives every
// applied action and failure as they happen, and the report at the end.
type Formatter interface {
	// PassStarted is called once the plan is known
	PassStarted(id string, planned int)

	// Record reports a successfully applied action
	Record(event models.Event)

	// RecordFailure reports an action that could not be applied
	RecordFailure(failure models.Failure)

	// PassCompleted finalizes output and displays the summary
	PassCompleted(report *models.PassReport)

	// Name returns the formatter name
	Name() string
}

// New returns the formatter registered under name writing to w.
// "progress" falls back to "human" when w is not a terminal.
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "progress":
		if !IsTerminal(w) {
			return NewHumanFormatter(w), nil
		}
		return NewProgressFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (use: human, json, progress)", name)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
