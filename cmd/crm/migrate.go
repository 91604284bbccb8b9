package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/merchant-crm/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func init() {
	for _, command := range []persistence.MigrationCommand{
		persistence.MigrateUp,
		persistence.MigrateDown,
		persistence.MigrateStatus,
	} {
		migrateCmd.AddCommand(migrationCmd(command))
	}
}

func migrationCmd(command persistence.MigrationCommand) *cobra.Command {
	short := map[persistence.MigrationCommand]string{
		persistence.MigrateUp:     "Apply all pending migrations",
		persistence.MigrateDown:   "Roll back the latest migration",
		persistence.MigrateStatus: "Print migration status",
	}[command]

	return &cobra.Command{
		Use:   string(command),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := persistence.Migrate(cmd.Context(), rt.pg.PoolHandle(), command, rt.logger); err != nil {
				return fmt.Errorf("migrate %s: %w", command, err)
			}
			return nil
		},
	}
}
