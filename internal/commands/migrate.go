package commands

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		newMigrateStepCommand("up", "Apply all pending migrations", (*database.Migrator).Up),
		newMigrateStepCommand("down", "Roll back all migrations", (*database.Migrator).Down),
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd)
				if err != nil {
					return err
				}
				m, err := database.NewMigrator(a.cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer m.Close()

				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func newMigrateStepCommand(use, short string, step func(*database.Migrator) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			m, err := database.NewMigrator(a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := m.Close(); cerr != nil {
					a.logger.Error("Error closing migrator", slog.String("error", cerr.Error()))
				}
			}()

			changed, err := step(m)
			if err != nil {
				return err
			}
			a.logger.Info("Migrations finished", slog.String("direction", use), slog.Bool("changed", changed))
			return nil
		},
	}
}
