package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	out   string
	limit int
	days  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the valuation history",
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history records to an xlsx spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency(ctx)
		if err != nil {
			return fmt.Errorf("failed to create app dependency: %w", err)
		}
		defer appDep.Close()

		f, err := os.Create(historyFlags.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", historyFlags.out, err)
		}
		n, err := appDep.services.HistoryExportService.Export(ctx, f, historyFlags.limit)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", n, historyFlags.out)
		return nil
	},
}

var historyTrimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Delete history records older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency(ctx)
		if err != nil {
			return fmt.Errorf("failed to create app dependency: %w", err)
		}
		defer appDep.Close()

		days := historyFlags.days
		if days <= 0 {
			days = appDep.cfg.Retention.Days
		}
		deleted, err := appDep.services.RetentionService.RunOnce(ctx, days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records older than %d days\n", deleted, days)
		return nil
	},
}

func init() {
	historyExportCmd.Flags().StringVar(&historyFlags.out, "out", "history.xlsx", "output spreadsheet path")
	historyExportCmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "export only the latest n records")
	historyTrimCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention in days, defaults to retention.days")

	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyTrimCmd)
}
