package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/foldermirror/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (debug logs on stderr)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// MirrorFlags holds the flags shared by sync, watch and compare
type MirrorFlags struct {
	Source    string
	Replica   string
	Hash      string
	DryRun    bool
	Parallel  int
	Bandwidth string
	Exclude   []string
	Output    string
	Interval  string
	Report    string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var mirrorFlags MirrorFlags

// addRootFlags registers --source and --replica as required flags
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&mirrorFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&mirrorFlags.Replica, "replica", "r", "", "replica directory path (required)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("replica")
}

// addScanFlags registers the flags that shape manifests
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mirrorFlags.Hash, "hash", "xxh3", "content hash: xxh3, md5")
	cmd.Flags().IntVarP(&mirrorFlags.Parallel, "parallel", "p", 0, "number of files hashed concurrently (default: 4)")
	cmd.Flags().StringSliceVar(&mirrorFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
}

// addPassFlags registers the flags of commands that apply passes
func addPassFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&mirrorFlags.DryRun, "dry-run", false, "plan only, don't modify the replica")
	cmd.Flags().StringVarP(&mirrorFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringVarP(&mirrorFlags.Output, "output", "o", "human", "output format: human, json, progress")

	// Logging flags
	cmd.Flags().StringVar(&mirrorFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&mirrorFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&mirrorFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
}
