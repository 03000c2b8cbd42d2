package sync

import (
	"github.com/sdejongh/foldermirror/pkg/models"
)

// EventSink receives one event per successfully applied action.
// Record is called synchronously and must not fail: it reports, it does not
// gate control flow.
type EventSink interface {
	Record(event models.Event)
}

// FailureRecorder is implemented by sinks that also want apply failures
type FailureRecorder interface {
	RecordFailure(failure models.Failure)
}

// PassObserver is implemented by sinks that track pass boundaries
type PassObserver interface {
	PassStarted(id string, planned int)
	PassCompleted(report *models.PassReport)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(event models.Event)

// Record calls f(event)
func (f SinkFunc) Record(event models.Event) {
	f(event)
}

// nopSink discards events
type nopSink struct{}

func (nopSink) Record(models.Event) {}
