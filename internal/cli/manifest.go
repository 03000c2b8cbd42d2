package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldermirror/pkg/storage"
	"github.com/sdejongh/foldermirror/pkg/sync"
)

// NewManifestCommand creates the manifest command
func NewManifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest <dir>",
		Short: "Print the content manifest of a folder",
		Long: `Scan a folder and print one line per entry: the content digest and
relative path of every file, then every directory with a trailing slash.`,
		Args: cobra.ExactArgs(1),
		RunE: runManifest,
	}

	addScanFlags(cmd)

	return cmd
}

func runManifest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := prepareConfig(cmd)
	if err != nil {
		return err
	}

	tree, err := storage.NewLocal(args[0])
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	manifest, err := sync.NewEngine(engineOptions(cfg), logger).Scanner().Scan(ctx, tree)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	w := cmd.OutOrStdout()
	for _, path := range manifest.SortedFiles() {
		fmt.Fprintf(w, "%s  %s\n", manifest.Files[path], path)
	}
	for _, path := range manifest.SortedDirs() {
		fmt.Fprintf(w, "%32s  %s/\n", "", path)
	}
	return nil
}
