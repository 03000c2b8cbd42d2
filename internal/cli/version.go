package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, overridden from cmd/foldermirror at startup
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// buildInfo is printed by both `version` and `--version`
func buildInfo() string {
	return fmt.Sprintf("foldermirror %s\n  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return
			}
			fmt.Fprint(cmd.OutOrStdout(), buildInfo())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
