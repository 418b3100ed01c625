package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/tally_ledger_store/internal/adapters/report"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/SscSPs/tally_ledger_store/internal/core/services"
	"github.com/SscSPs/tally_ledger_store/internal/dto"
	"github.com/spf13/cobra"
)

func newLoadCommand() *cobra.Command {
	var (
		files      []string
		reportPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load producer batch files, one tenant per batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			batches, err := readBatchFiles(files)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				return fmt.Errorf("no batches found in %v", files)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reports, runErr := a.load(ctx, batches, dryRun)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(dto.ToSyncAllResponse(reports, runErr)); err != nil {
				return err
			}
			if reportPath != "" {
				if err := report.Save(reportPath, reports); err != nil {
					return err
				}
				a.logger.Info("Sync report written", slog.String("path", reportPath))
			}
			return runErr
		},
	}

	cmd.Flags().StringArrayVar(&files, "file", nil, "batch file to load (repeatable)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the sync reports to this .xlsx file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "load into an in-memory store instead of the database")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) load(ctx context.Context, batches []domain.SyncBatch, dryRun bool) ([]*domain.SyncReport, error) {
	repos, closeRepos, err := a.repositories(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	defer closeRepos()

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	container := services.NewServiceContainer(a.cfg, repos, a.tenantLocker(rdb))
	a.logger.Info("Loading batches", slog.Int("tenants", len(batches)), slog.Bool("dry_run", dryRun))
	return container.Sync.RunAll(ctx, batches)
}
