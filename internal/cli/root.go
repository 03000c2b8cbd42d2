package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the foldermirror command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foldermirror",
		Short: "One-way folder mirroring by content hash",
		Long: `foldermirror keeps a replica folder identical to a source folder.
Changes are detected by hashing file contents, never by timestamps, and the
replica is brought in line with ordered create, update and delete actions.
Run it once with 'sync' or periodically with 'watch'.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(buildInfo())

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewManifestCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
