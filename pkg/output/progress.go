package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/foldermirror/pkg/models"
)

const progressTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// ProgressFormatter shows a progress bar over the planned actions and the
// human summary once the pass completes.
type ProgressFormatter struct {
	writer    io.Writer
	termWidth int

	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(w io.Writer) *ProgressFormatter {
	if w == nil {
		w = os.Stdout
	}

	f := &ProgressFormatter{writer: w}

	// Detect terminal width to prevent line wrapping issues
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}
	return f
}

// PassStarted starts a bar sized to the planned actions
func (f *ProgressFormatter) PassStarted(id string, planned int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if planned == 0 {
		fmt.Fprintf(f.writer, "Replica is up to date\n")
		return
	}

	bar := pb.New(planned).
		SetTemplateString(progressTemplate).
		SetWriter(f.writer).
		Set("prefix", "Synchronizing ")
	if f.termWidth > 0 {
		bar.SetMaxWidth(f.termWidth)
	}
	f.bar = bar.Start()
}

// Record advances the bar
func (f *ProgressFormatter) Record(event models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Increment()
	}
}

// RecordFailure advances the bar; failures are listed in the summary
func (f *ProgressFormatter) RecordFailure(failure models.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Increment()
	}
}

// PassCompleted stops the bar and prints the summary
func (f *ProgressFormatter) PassCompleted(report *models.PassReport) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}

	writeSummary(f.writer, report)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
