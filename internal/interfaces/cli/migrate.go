package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/internal/infrastructure/database/postgres"
)

// NewMigrateCmd creates the migrate command applying pending database
// migrations and exiting.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if err := postgres.RunMigrations(cliCtx.Config.Database, cliCtx.Logger); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			PrintSuccess(cmd, "database schema is up to date")
			return nil
		},
	}
}
