// Package main is the DRIMS server binary: it serves the HTTP API and runs
// schema migrations and reference-data seeding.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/config"
	"github.com/odpem/drims/internal/db"
)

var version = "dev"

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func main() {
	// glog backs the fatal start-up errors.
	_ = flag.Set("logtostderr", "true")

	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "drims",
		Short:         "Disaster Relief Inventory Management System server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("DRIMS_CONFIG"), "Path to a YAML config file")
	if err := config.BindFlags(a.v, root.PersistentFlags()); err != nil {
		glog.Fatalf("Failed to bind flags: %v", err)
	}

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a), newHealthcheckCmd(a))

	if err := root.Execute(); err != nil {
		glog.Fatalf("drims: %v", err)
	}
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger(os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	dbCfg := a.cfg.Database()
	a.logger.Info("opening database", "type", dbCfg.Type)
	return db.Open(dbCfg)
}
