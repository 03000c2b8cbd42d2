package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldermirror/pkg/output"
	"github.com/sdejongh/foldermirror/pkg/sync"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Show what a sync would change (dry-run)",
		Long: `Compare source and replica folders and list the actions a sync would
apply, without performing any file operations. Exits with status 1 when the
trees differ.`,
		RunE: runCompare,
	}

	addRootFlags(cmd)
	addScanFlags(cmd)
	cmd.Flags().StringVarP(&mirrorFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().StringVar(&mirrorFlags.Report, "report", "", "write the plan to a file instead of stdout")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
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

	engine := sync.NewEngine(engineOptions(cfg), logger)
	plan, err := engine.Plan(ctx, source, replica)
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("compare failed: %w", err)}
	}

	report := output.PlanReport{
		Source:  source.Root(),
		Replica: replica.Root(),
		Actions: plan.Actions,
	}

	w := cmd.OutOrStdout()
	if mirrorFlags.Report != "" {
		file, err := os.Create(mirrorFlags.Report)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := output.WritePlan(w, report, cfg.Output.Format); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	if len(plan.Actions) > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d differences found", len(plan.Actions))}
	}
	return nil
}
