package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/sync"
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the source folder into the replica once",
		Long: `Run a single synchronization pass: scan both trees, compute the
differences by content hash and apply them so the replica matches the source.
Files and directories missing from the source are removed from the replica.`,
		RunE: runSync,
	}

	addRootFlags(cmd)
	addScanFlags(cmd)
	addPassFlags(cmd)

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := prepareConfig(cmd)
	if err != nil {
		return err
	}

	source, replica, err := openRoots(mirrorFlags.Source, mirrorFlags.Replica)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	sink, err := createSink(cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}

	engine := sync.NewEngine(engineOptions(cfg), logger)
	report, err := engine.RunOnce(ctx, source, replica, sink)
	return passError(report, err)
}

// passError turns a pass outcome into the command's exit status
func passError(report *models.PassReport, err error) error {
	if report == nil {
		return err
	}

	switch report.Status {
	case models.StatusSuccess:
		return nil
	case models.StatusPartial:
		return &ExitError{
			Code: report.Status.ExitCode(),
			Err:  fmt.Errorf("%d of %d actions failed", report.Stats.Failed, len(report.Actions)),
		}
	default:
		if err == nil {
			err = fmt.Errorf("synchronization %s", report.Status)
		}
		return &ExitError{Code: report.Status.ExitCode(), Err: fmt.Errorf("sync failed: %w", err)}
	}
}
