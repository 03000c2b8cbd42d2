package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// HumanFormatter prints one line per change and a summary per pass
type HumanFormatter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(w io.Writer) *HumanFormatter {
	if w == nil {
		w = io.Discard
	}
	return &HumanFormatter{writer: w}
}

// PassStarted announces the number of planned actions
func (f *HumanFormatter) PassStarted(id string, planned int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if planned == 0 {
		fmt.Fprintf(f.writer, "Replica is up to date\n")
		return
	}
	fmt.Fprintf(f.writer, "Synchronizing: %d actions planned\n", planned)
}

// Record prints the change
func (f *HumanFormatter) Record(event models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintln(f.writer, event.Message())
}

// RecordFailure prints the failed action
func (f *HumanFormatter) RecordFailure(failure models.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.writer, "✗ %s\n", failure.Message())
}

// PassCompleted prints the summary
func (f *HumanFormatter) PassCompleted(report *models.PassReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeSummary(f.writer, report)
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the end-of-pass summary shared by the text formatters
func writeSummary(w io.Writer, report *models.PassReport) {
	s := report.Stats

	fmt.Fprintf(w, "\n")
	if report.DryRun {
		fmt.Fprintf(w, "Dry run completed in %s (%d actions planned, nothing applied)\n",
			report.Duration.Round(time.Millisecond), len(report.Actions))
	} else {
		fmt.Fprintf(w, "Pass completed in %s\n", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Source:         %d files, %d dirs\n", s.SourceFiles, s.SourceDirs)
	fmt.Fprintf(w, "    Replica:        %d files, %d dirs\n", s.ReplicaFiles, s.ReplicaDirs)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Operations:\n")
	fmt.Fprintf(w, "    Files created:  %d\n", s.FilesCreated)
	fmt.Fprintf(w, "    Files updated:  %d\n", s.FilesUpdated)
	fmt.Fprintf(w, "    Files removed:  %d\n", s.FilesRemoved)
	fmt.Fprintf(w, "    Dirs created:   %d\n", s.DirsCreated)
	fmt.Fprintf(w, "    Dirs removed:   %d\n", s.DirsRemoved)
	fmt.Fprintf(w, "    Failed:         %d\n", s.Failed)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Transfer:\n")
	fmt.Fprintf(w, "    Data:           %s\n", formatBytes(s.BytesCopied))

	if report.Duration.Seconds() > 0 && s.BytesCopied > 0 {
		avgSpeed := float64(s.BytesCopied) / report.Duration.Seconds()
		fmt.Fprintf(w, "    Average speed:  %s/s\n", formatBytes(int64(avgSpeed)))
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if report.Err != nil {
		fmt.Fprintf(w, "Error: %v\n", report.Err)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\nFailures:\n")
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "  %s %s (%s): %v\n", failure.Action.Kind, failure.Action.Path, failure.Kind, failure.Err)
		}
	}
}
