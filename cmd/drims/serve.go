package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/server"
	"github.com/odpem/drims/pkg/audit"
	"github.com/odpem/drims/pkg/features"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		migrate      bool
		featuresPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the DRIMS HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, migrate, featuresPath)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Migrate the schema and seed reference data before serving")
	cmd.Flags().StringVar(&featuresPath, "features", "", "Path to a feature table replacing the built-in one")
	return cmd
}

func serve(ctx context.Context, a *app, migrate bool, featuresPath string) error {
	logger := a.logger
	logger.Info("starting drims", "version", version, "listen", a.cfg.Listen)

	gdb, err := a.openDB()
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}
	if migrate {
		if err := db.Migrate(ctx, gdb, logger, &audit.EventRecord{}); err != nil {
			glog.Fatalf("Failed to migrate database: %v", err)
		}
		if _, err := db.Seed(ctx, gdb); err != nil {
			glog.Fatalf("Failed to seed reference data: %v", err)
		}
	}

	registry, err := loadRegistry(featuresPath)
	if err != nil {
		glog.Fatalf("Failed to load feature table: %v", err)
	}

	srvCfg, err := a.cfg.Server()
	if err != nil {
		return err
	}
	srv, err := server.New(gdb, registry, srvCfg, logger)
	if err != nil {
		glog.Fatalf("Failed to build server: %v", err)
	}

	retention, err := audit.NewRetentionWorker(srv.AuditStore(), srvCfg.Audit, logger).Start(ctx)
	if err != nil {
		glog.Fatalf("Failed to start audit retention: %v", err)
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()
	logger.Info("drims ready", "listen", a.cfg.Listen, "features", len(registry.Keys()))

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if retention != nil {
		<-retention.Stop().Done()
	}

	logger.Info("drims stopped")
	return nil
}

func loadRegistry(path string) (*features.Registry, error) {
	if path == "" {
		return features.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := features.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
