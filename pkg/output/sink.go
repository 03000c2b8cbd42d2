package output

import (
	"context"

	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/models"
)

// LogSink writes one info line per applied action to a logger.
// Failures are logged by the engine itself.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a sink logging through logger
func NewLogSink(logger logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &LogSink{logger: logger}
}

// Record logs the change
func (s *LogSink) Record(event models.Event) {
	s.logger.Info(context.Background(), event.Message(), logging.Fields{
		"path": event.Path,
		"kind": string(event.Kind),
	})
}

// Recorder receives applied-action events
type Recorder interface {
	Record(event models.Event)
}

// Tee forwards events to a formatter and any number of plain sinks
type Tee struct {
	formatter Formatter
	sinks     []Recorder
}

// NewTee creates a fan-out sink. formatter may be nil.
func NewTee(formatter Formatter, sinks ...Recorder) *Tee {
	return &Tee{formatter: formatter, sinks: sinks}
}

// Record forwards the event to every sink
func (t *Tee) Record(event models.Event) {
	if t.formatter != nil {
		t.formatter.Record(event)
	}
	for _, s := range t.sinks {
		s.Record(event)
	}
}

// RecordFailure forwards the failure to the formatter
func (t *Tee) RecordFailure(failure models.Failure) {
	if t.formatter != nil {
		t.formatter.RecordFailure(failure)
	}
}

// PassStarted forwards to the formatter
func (t *Tee) PassStarted(id string, planned int) {
	if t.formatter != nil {
		t.formatter.PassStarted(id, planned)
	}
}

// PassCompleted forwards to the formatter
func (t *Tee) PassCompleted(report *models.PassReport) {
	if t.formatter != nil {
		t.formatter.PassCompleted(report)
	}
}
