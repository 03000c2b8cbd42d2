package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// FileLogger implements Logger with file output and size-based rotation.
// Loggers derived with WithFields share the underlying file.
type FileLogger struct {
	config FileLoggerConfig
	out    *rotatingFile
	fields Fields
}

// rotatingFile is the file shared by a FileLogger and its children
type rotatingFile struct {
	mu          sync.Mutex
	path        string
	maxSize     int64
	maxBackups  int
	file        *os.File
	currentSize int64
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if config.Format == "" {
		config.Format = FormatText
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	out := &rotatingFile{
		path:       config.Path,
		maxSize:    config.MaxSize,
		maxBackups: config.MaxBackups,
	}
	if err := out.open(); err != nil {
		return nil, err
	}

	return &FileLogger{config: config, out: out}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		config: l.config,
		out:    l.out,
		fields: merge(l.fields, fields),
	}
}

// Close flushes and closes the log file
func (l *FileLogger) Close() error {
	return l.out.close()
}

func (l *FileLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.config.Level {
		return
	}

	all := merge(l.fields, fields)

	now := time.Now().UTC()
	var line []byte
	if l.config.Format == FormatJSON {
		var fmtErr error
		if line, fmtErr = formatJSON(now, level, msg, err, all); fmtErr != nil {
			return
		}
	} else {
		line = formatText(now, level, msg, err, all)
	}

	l.out.write(line)
}

// formatJSON renders one JSON object per line
func formatJSON(now time.Time, level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = now.Format(time.RFC3339)
	entry["level"] = LevelString(level)
	entry["message"] = msg
	if err != nil {
		entry["error"] = err.Error()
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

// formatText renders "timestamp [LEVEL] message key=value ..." with sorted keys
func formatText(now time.Time, level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(now.Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [")
	b.WriteString(LevelString(level))
	b.WriteString("] ")
	b.WriteString(msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func (f *rotatingFile) open() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	f.file = file
	f.currentSize = info.Size()
	return nil
}

func (f *rotatingFile) write(line []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return
	}

	// Check rotation before writing
	if f.maxSize > 0 && f.currentSize >= f.maxSize {
		f.rotate()
		if f.file == nil {
			return
		}
	}

	n, _ := f.file.Write(line)
	f.currentSize += int64(n)
}

func (f *rotatingFile) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// rotate shifts path.N to path.N+1, moves the live file to path.1 and
// reopens path. Backups beyond maxBackups are removed. Caller holds f.mu.
func (f *rotatingFile) rotate() {
	f.file.Close()
	f.file = nil

	if f.maxBackups <= 0 {
		os.Remove(f.path)
	} else {
		os.Remove(fmt.Sprintf("%s.%d", f.path, f.maxBackups))
		for i := f.maxBackups - 1; i >= 1; i-- {
			os.Rename(fmt.Sprintf("%s.%d", f.path, i), fmt.Sprintf("%s.%d", f.path, i+1))
		}
		os.Rename(f.path, f.path+".1")
	}

	// A failed reopen leaves the logger silent rather than crashing the pass
	_ = f.open()
}
