package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/schedule"
	"github.com/sdejongh/foldermirror/pkg/sync"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror the source folder into the replica periodically",
		Long: `Run a synchronization pass immediately, then again every --interval
until interrupted (SIGINT or SIGTERM). A pass in progress is stopped between
two actions; the next run picks up from the replica's current state.`,
		RunE: runWatch,
	}

	addRootFlags(cmd)
	addScanFlags(cmd)
	addPassFlags(cmd)
	cmd.Flags().StringVarP(&mirrorFlags.Interval, "interval", "i", "5m", "delay between passes (e.g., \"30s\", \"5m\")")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	trigger, err := schedule.NewInterval(cfg.Sync.Interval)
	if err != nil {
		return err
	}

	engine := sync.NewEngine(engineOptions(cfg), logger)
	runner := schedule.NewRunner(trigger, func(ctx context.Context) error {
		report, err := engine.RunOnce(ctx, source, replica, sink)
		return passError(report, err)
	}, logger)

	logger.Info(ctx, "Watching for changes", logging.Fields{
		"source":   source.Root(),
		"replica":  replica.Root(),
		"interval": cfg.Sync.Interval.String(),
	})

	runner.Run(ctx)
	return nil
}
