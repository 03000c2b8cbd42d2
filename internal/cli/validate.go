package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldermirror/internal/platform"
	"github.com/sdejongh/foldermirror/pkg/config"
	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/output"
	"github.com/sdejongh/foldermirror/pkg/storage"
	"github.com/sdejongh/foldermirror/pkg/sync"
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on cmd
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("hash") {
		algo, err := digest.ParseAlgorithm(mirrorFlags.Hash)
		if err != nil {
			return err
		}
		cfg.Sync.Hash = algo
	}
	if changed("dry-run") {
		cfg.Sync.DryRun = mirrorFlags.DryRun
	}
	if changed("interval") {
		d, err := time.ParseDuration(mirrorFlags.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", mirrorFlags.Interval, err)
		}
		cfg.Sync.Interval = d
	}
	if changed("parallel") && mirrorFlags.Parallel > 0 {
		cfg.Performance.HashWorkers = mirrorFlags.Parallel
	}
	if changed("bandwidth") {
		cfg.Performance.BandwidthLimit = mirrorFlags.Bandwidth
	}
	if changed("exclude") {
		cfg.Exclude = mirrorFlags.Exclude
	}
	if changed("output") {
		if mirrorFlags.Output == "progress" {
			cfg.Output.Format = "human"
			cfg.Output.Progress = true
		} else {
			cfg.Output.Format = mirrorFlags.Output
			cfg.Output.Progress = false
		}
	}
	if changed("log-file") {
		cfg.Logging.Enabled = true
		cfg.Logging.File = mirrorFlags.LogFile
	}
	if changed("log-format") {
		cfg.Logging.Format = mirrorFlags.LogFormat
	}
	if changed("log-level") {
		cfg.Logging.Level = mirrorFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	return cfg.Validate()
}

// prepareConfig loads the configuration and applies cmd's flags to it
func prepareConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// engineOptions maps the configuration onto sync options
func engineOptions(cfg *config.Config) sync.Options {
	return sync.Options{
		Hash:           cfg.Sync.Hash,
		BufferSize:     cfg.Performance.BufferSize,
		Workers:        cfg.Performance.HashWorkers,
		Exclude:        cfg.Exclude,
		BandwidthLimit: cfg.BandwidthBytes(),
		DryRun:         cfg.Sync.DryRun,
	}
}

// openRoots validates both roots and opens them as trees
func openRoots(source, replica string) (*storage.Tree, *storage.Tree, error) {
	srcPath, repPath, err := platform.ValidateRoots(source, replica)
	if err != nil {
		return nil, nil, err
	}

	src, err := storage.NewLocal(srcPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open source: %w", err)
	}
	rep, err := storage.NewLocal(repPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open replica: %w", err)
	}
	return src, rep, nil
}

// createLogger builds the file logger (when configured) plus a console
// logger on stderr showing warnings, or everything with --verbose
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	consoleLevel := logging.WarnLevel
	switch {
	case globalFlags.Quiet:
		consoleLevel = logging.ErrorLevel
	case globalFlags.Verbose:
		consoleLevel = logging.DebugLevel
	}
	console := logging.NewConsoleLogger(stderr, logging.FormatText, consoleLevel)

	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return console, nil
	}

	file, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logging.Multi(file, console), nil
}

// createSink builds the event sink: the user-facing formatter plus one log
// line per change
func createSink(cfg *config.Config, stdout io.Writer, logger logging.Logger) (sync.EventSink, error) {
	var formatter output.Formatter
	if !cfg.Output.Quiet {
		name := cfg.Output.Format
		if name == "human" && cfg.Output.Progress {
			name = "progress"
		}
		f, err := output.New(name, stdout)
		if err != nil {
			return nil, err
		}
		formatter = f
	}

	return output.NewTee(formatter, output.NewLogSink(logger)), nil
}
