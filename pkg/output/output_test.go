package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/models"
)

func testReport() *models.PassReport {
	failure := models.Failure{
		Action: models.Action{Kind: models.ActionDeleteDir, Path: "old"},
		Kind:   models.FailureNotEmpty,
		Err:    models.ErrNotEmpty,
		Time:   time.Now(),
	}
	return &models.PassReport{
		ID:          "pass-1",
		SourcePath:  "/src",
		ReplicaPath: "/replica",
		StartTime:   time.Now().Add(-time.Second),
		EndTime:     time.Now(),
		Duration:    time.Second,
		Actions:     []models.Action{{Kind: models.ActionCreateFile, Path: "a.txt"}, failure.Action},
		Stats:       models.Statistics{SourceFiles: 1, FilesCreated: 1, Failed: 1, BytesCopied: 2048},
		Failures:    []models.Failure{failure},
		Status:      models.StatusPartial,
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for name, want := range map[string]string{"": "human", "human": "human", "json": "json", "progress": "human"} {
		f, err := New(name, &buf)
		require.NoError(t, err)
		assert.Equal(t, want, f.Name(), "format %q", name)
	}

	_, err := New("xml", &buf)
	assert.Error(t, err)
	assert.False(t, IsTerminal(&buf))
}

func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(&buf)
	report := testReport()

	f.PassStarted(report.ID, 2)
	f.Record(models.NewEvent("a.txt", models.EventCreated))
	f.RecordFailure(report.Failures[0])
	f.PassCompleted(report)

	out := buf.String()
	assert.Contains(t, out, "Synchronizing: 2 actions planned")
	assert.Contains(t, out, "File/Folder a.txt created.\n")
	assert.Contains(t, out, "✗ Failed to delete_dir old: directory not empty")
	assert.Contains(t, out, "Files created:  1")
	assert.Contains(t, out, "Data:           2.0 KiB")
	assert.Contains(t, out, "Status: partial")
	assert.Contains(t, out, "delete_dir old (not_empty)")
}

func TestHumanFormatterUpToDate(t *testing.T) {
	var buf bytes.Buffer
	NewHumanFormatter(&buf).PassStarted("p", 0)
	assert.Equal(t, "Replica is up to date\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	report := testReport()

	f.PassStarted(report.ID, 2)
	f.Record(models.NewEvent("a.txt", models.EventCreated))
	f.RecordFailure(report.Failures[0])
	f.PassCompleted(report)

	var events []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 4)

	assert.Equal(t, "start", events[0]["type"])
	assert.Equal(t, "pass-1", events[0]["pass_id"])

	assert.Equal(t, "change", events[1]["type"])
	change := events[1]["data"].(map[string]interface{})
	assert.Equal(t, "a.txt", change["path"])
	assert.Equal(t, "created", change["kind"])

	assert.Equal(t, "failure", events[2]["type"])
	failure := events[2]["data"].(map[string]interface{})
	assert.Equal(t, "not_empty", failure["kind"])

	assert.Equal(t, "report", events[3]["type"])
	data := events[3]["data"].(map[string]interface{})
	assert.Equal(t, "partial", data["status"])
	assert.NotContains(t, data, "actions")
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 2048, stats["bytes_copied"])
}

func TestProgressFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter(&buf)
	report := testReport()

	f.PassStarted(report.ID, 2)
	f.Record(models.NewEvent("a.txt", models.EventCreated))
	f.RecordFailure(report.Failures[0])
	f.PassCompleted(report)

	out := buf.String()
	assert.Contains(t, out, "Synchronizing")
	assert.Contains(t, out, "Status: partial")
	assert.Equal(t, "progress", f.Name())
}

func TestLogSinkAndTee(t *testing.T) {
	var logs, human bytes.Buffer
	logger := logging.NewConsoleLogger(&logs, logging.FormatText, logging.InfoLevel)

	tee := NewTee(NewHumanFormatter(&human), NewLogSink(logger))
	tee.PassStarted("p", 1)
	tee.Record(models.NewEvent("docs", models.EventRemoved))
	tee.RecordFailure(models.Failure{
		Action: models.Action{Kind: models.ActionCreateFile, Path: "x"},
		Kind:   models.FailureIO,
		Err:    errors.New("disk full"),
	})
	tee.PassCompleted(testReport())

	assert.Contains(t, logs.String(), `msg="File/Folder docs removed."`)
	assert.Contains(t, logs.String(), "kind=removed")
	assert.Equal(t, 1, strings.Count(logs.String(), "\n"))

	assert.Contains(t, human.String(), "File/Folder docs removed.")
	assert.Contains(t, human.String(), "Failed to create_file x: disk full")

	// Nil formatter is allowed
	assert.NotPanics(t, func() {
		NewTee(nil).Record(models.NewEvent("a", models.EventCreated))
		NewLogSink(nil).Record(models.NewEvent("a", models.EventCreated))
	})
}

func TestWritePlan(t *testing.T) {
	plan := PlanReport{
		Source:  "/src",
		Replica: "/replica",
		Actions: []models.Action{
			{Kind: models.ActionCreateFile, Path: "a.txt"},
			{Kind: models.ActionDeleteDir, Path: "old"},
		},
	}

	t.Run("Human", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WritePlan(&buf, plan, "human"))
		assert.Contains(t, buf.String(), "Planned actions: 2")
		assert.Contains(t, buf.String(), "create_file  a.txt")
		assert.Contains(t, buf.String(), "delete_dir: 1")
	})

	t.Run("HumanIdentical", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WritePlan(&buf, PlanReport{Source: "a", Replica: "b"}, "human"))
		assert.Contains(t, buf.String(), "Trees are identical")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WritePlan(&buf, plan, "json"))

		var out struct {
			Identical bool `json:"identical"`
			Actions   []struct {
				Kind string `json:"kind"`
				Path string `json:"path"`
			} `json:"actions"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.False(t, out.Identical)
		require.Len(t, out.Actions, 2)
		assert.Equal(t, "delete_dir", out.Actions[1].Kind)
	})
}
