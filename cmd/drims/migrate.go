package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/pkg/audit"
)

func newMigrateCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(cmd.Context(), gdb, a.logger, &audit.EventRecord{}); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if !seed {
				return nil
			}
			return runSeed(cmd, a, gdb)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Also load reference data")
	return cmd
}
