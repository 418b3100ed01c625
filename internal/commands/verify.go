package commands

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/SscSPs/tally_ledger_store/internal/core/services"
	"github.com/spf13/cobra"
)

// errNotClean is returned in strict mode when diagnostics found problems.
var errNotClean = errors.New("ledger verification found problems")

func newVerifyCommand() *cobra.Command {
	var (
		userID      string
		companyName string
		strict      bool
		files       []string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Print hierarchy and ledger diagnostics for one tenant",
		Long: `Print hierarchy and ledger diagnostics for one tenant as JSON.

With --file the batches are first loaded into an in-memory store and the
diagnostics run against that, leaving the database untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tenant := domain.Tenant{UserID: userID, CompanyName: companyName}

			dryRun := len(files) > 0
			repos, closeRepos, err := a.repositories(ctx, dryRun)
			if err != nil {
				return err
			}
			defer closeRepos()
			container := services.NewServiceContainer(a.cfg, repos, a.tenantLocker(nil))

			if dryRun {
				batches, err := readBatchFiles(files)
				if err != nil {
					return err
				}
				if _, err := container.Sync.RunAll(ctx, batches); err != nil {
					a.logger.Warn("Batches loaded with errors", slog.String("error", err.Error()))
				}
			}

			diagnostics, err := container.Diagnostics.Diagnose(ctx, tenant)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(diagnostics); err != nil {
				return err
			}
			if strict && !diagnostics.Clean() {
				return &ExitError{Code: 2, Err: errNotClean}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "tenant user id")
	cmd.Flags().StringVar(&companyName, "company", "", "tenant company name")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when any check fails")
	cmd.Flags().StringArrayVar(&files, "file", nil, "verify these batch files in memory instead of the database")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
