package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Runs one collection pass over the configured targets",
		Long: `Processes every configured target once: resolves missing song
identifiers, fetches each song page, extracts the declared metrics, and
upserts today's snapshot. Exits non-zero only on setup failure; individual
target failures are recorded and reported in the summary.`,
		RunE: runCollect,
	}
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(a.cfg.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, a.cfg.RunTimeout())
	defer cancel()

	summary, err := a.engine.Run(runCtx, a.cfg.Targets)
	if err != nil {
		return fmt.Errorf("collection run: %w", err)
	}

	a.logger.Info("collection summary",
		zap.String("run_id", summary.RunID),
		zap.String("date", summary.Date),
		zap.Int("total", summary.Total),
		zap.Int("ok", summary.OK),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	if summary.Failed > 0 {
		a.logger.Warn("some targets failed", zap.Int("failed", summary.Failed))
	}
	return nil
}
