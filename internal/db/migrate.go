package db

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/models"
)

// Migrate brings the schema of every DRIMS model, plus any extra tables owned
// by other packages, up to date while holding the migration lock.
func Migrate(ctx context.Context, gdb *gorm.DB, logger *slog.Logger, extra ...any) error {
	if logger == nil {
		logger = slog.Default()
	}

	tables := append(models.All(), extra...)
	return NewLocker(gdb).WithLock(ctx, func() error {
		if err := gdb.WithContext(ctx).AutoMigrate(tables...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		logger.Info("schema migrated", "tables", len(tables))
		return nil
	})
}
