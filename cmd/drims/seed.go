package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load parishes, item categories and units of measure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			return runSeed(cmd, a, gdb)
		},
	}
}

func runSeed(cmd *cobra.Command, a *app, gdb *gorm.DB) error {
	res, err := db.Seed(cmd.Context(), gdb)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	a.logger.Info("reference data seeded",
		"parishes", res.Parishes,
		"categories", res.Categories,
		"uoms", res.UOMs)
	return nil
}
