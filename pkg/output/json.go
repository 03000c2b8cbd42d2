package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/sdejongh/foldermirror/pkg/models"
)

// JSONFormatter writes one JSON object per line for automation and scripting
type JSONFormatter struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	PassID    string    `json:"pass_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	Planned int `json:"planned"`
}

// JSONChangeData represents an applied action
type JSONChangeData struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// JSONFailureData represents an action that could not be applied
type JSONFailureData struct {
	Path   string `json:"path"`
	Action string `json:"action"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	Source     string            `json:"source"`
	Replica    string            `json:"replica"`
	Status     string            `json:"status"`
	DryRun     bool              `json:"dry_run,omitempty"`
	Duration   string            `json:"duration"`
	DurationMs int64             `json:"duration_ms"`
	Stats      JSONStatsData     `json:"stats"`
	Actions    []JSONChangeData  `json:"actions,omitempty"`
	Failures   []JSONFailureData `json:"failures,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// JSONStatsData represents pass statistics
type JSONStatsData struct {
	SourceFiles  int   `json:"source_files"`
	SourceDirs   int   `json:"source_dirs"`
	ReplicaFiles int   `json:"replica_files"`
	ReplicaDirs  int   `json:"replica_dirs"`
	FilesCreated int   `json:"files_created"`
	FilesUpdated int   `json:"files_updated"`
	FilesRemoved int   `json:"files_removed"`
	DirsCreated  int   `json:"dirs_created"`
	DirsRemoved  int   `json:"dirs_removed"`
	Failed       int   `json:"failed"`
	BytesCopied  int64 `json:"bytes_copied"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = io.Discard
	}
	return &JSONFormatter{encoder: json.NewEncoder(w)}
}

// PassStarted emits a start event
func (f *JSONFormatter) PassStarted(id string, planned int) {
	f.emit(JSONEvent{Type: "start", PassID: id, Data: JSONStartData{Planned: planned}})
}

// Record emits a change event
func (f *JSONFormatter) Record(event models.Event) {
	f.emit(JSONEvent{
		Timestamp: event.Time,
		Type:      "change",
		Data:      JSONChangeData{Path: event.Path, Kind: string(event.Kind)},
	})
}

// RecordFailure emits a failure event
func (f *JSONFormatter) RecordFailure(failure models.Failure) {
	f.emit(JSONEvent{
		Timestamp: failure.Time,
		Type:      "failure",
		Data:      failureData(failure),
	})
}

// PassCompleted emits the report
func (f *JSONFormatter) PassCompleted(report *models.PassReport) {
	data := JSONReportData{
		Source:     report.SourcePath,
		Replica:    report.ReplicaPath,
		Status:     string(report.Status),
		DryRun:     report.DryRun,
		Duration:   report.Duration.String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			SourceFiles:  report.Stats.SourceFiles,
			SourceDirs:   report.Stats.SourceDirs,
			ReplicaFiles: report.Stats.ReplicaFiles,
			ReplicaDirs:  report.Stats.ReplicaDirs,
			FilesCreated: report.Stats.FilesCreated,
			FilesUpdated: report.Stats.FilesUpdated,
			FilesRemoved: report.Stats.FilesRemoved,
			DirsCreated:  report.Stats.DirsCreated,
			DirsRemoved:  report.Stats.DirsRemoved,
			Failed:       report.Stats.Failed,
			BytesCopied:  report.Stats.BytesCopied,
		},
	}

	// Planned actions are only listed when they were not applied
	if report.DryRun {
		for _, a := range report.Actions {
			data.Actions = append(data.Actions, JSONChangeData{Path: a.Path, Kind: string(a.Kind)})
		}
	}
	for _, failure := range report.Failures {
		data.Failures = append(data.Failures, failureData(failure))
	}
	if report.Err != nil {
		data.Error = report.Err.Error()
	}

	f.emit(JSONEvent{Timestamp: report.EndTime, Type: "report", PassID: report.ID, Data: data})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) emit(event JSONEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.encoder.Encode(event)
}

func failureData(failure models.Failure) JSONFailureData {
	data := JSONFailureData{
		Path:   failure.Action.Path,
		Action: string(failure.Action.Kind),
		Kind:   string(failure.Kind),
	}
	if failure.Err != nil {
		data.Error = failure.Err.Error()
	}
	return data
}
