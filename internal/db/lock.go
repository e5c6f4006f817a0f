package db

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"gorm.io/gorm"
)

// Locker serialises schema migration across concurrently starting instances.
type Locker interface {
	WithLock(ctx context.Context, fn func() error) error
}

const lockName = "drims-migration"

// NewLocker picks a lock strategy for the connection's dialect: an advisory
// lock on PostgreSQL, GET_LOCK on MySQL and a lock row everywhere else.
func NewLocker(gdb *gorm.DB) Locker {
	if gdb == nil {
		return noopLock{}
	}
	switch gdb.Dialector.Name() {
	case TypePostgres:
		return &pgAdvisoryLock{db: gdb, id: int64(crc32.ChecksumIEEE([]byte(lockName)))}
	case TypeMySQL:
		return &mysqlNamedLock{db: gdb, timeout: 60}
	}
	return &rowLock{
		db:       gdb,
		retries:  30,
		interval: time.Second,
		stale:    5 * time.Minute,
	}
}

type noopLock struct{}

func (noopLock) WithLock(_ context.Context, fn func() error) error { return fn() }

type pgAdvisoryLock struct {
	db *gorm.DB
	id int64
}

func (l *pgAdvisoryLock) WithLock(ctx context.Context, fn func() error) error {
	// Advisory locks are per session, so pin one connection.
	conn, err := l.db.DB()
	if err != nil {
		return err
	}
	c, err := conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for migration lock: %w", err)
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, "SELECT pg_advisory_lock($1)", l.id); err != nil {
		return fmt.Errorf("acquire migration advisory lock: %w", err)
	}
	defer func() {
		_, _ = c.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", l.id)
	}()
	return fn()
}

type mysqlNamedLock struct {
	db      *gorm.DB
	timeout int
}

func (l *mysqlNamedLock) WithLock(ctx context.Context, fn func() error) error {
	conn, err := l.db.DB()
	if err != nil {
		return err
	}
	c, err := conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for migration lock: %w", err)
	}
	defer c.Close()

	var got int
	if err := c.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", lockName, l.timeout).Scan(&got); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if got != 1 {
		return fmt.Errorf("migration lock %q not acquired within %ds", lockName, l.timeout)
	}
	defer func() {
		_, _ = c.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", lockName)
	}()
	return fn()
}

// lockRecord is the single row held while migrating on engines without
// named locks.
type lockRecord struct {
	ID       string    `gorm:"primaryKey;column:id;type:varchar(40)"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by;type:varchar(255)"`
}

func (lockRecord) TableName() string { return "migration_lock" }

type rowLock struct {
	db       *gorm.DB
	retries  int
	interval time.Duration
	stale    time.Duration
}

func (l *rowLock) WithLock(ctx context.Context, fn func() error) error {
	if err := l.db.WithContext(ctx).AutoMigrate(&lockRecord{}); err != nil {
		return fmt.Errorf("create migration lock table: %w", err)
	}

	holder, _ := os.Hostname()
	if holder == "" {
		holder = "unknown"
	}

	var lastErr error
	for i := 0; i < l.retries; i++ {
		// A crashed holder leaves its row behind.
		l.db.WithContext(ctx).
			Where("id = ? AND locked_at < ?", lockName, time.Now().Add(-l.stale)).
			Delete(&lockRecord{})

		row := lockRecord{ID: lockName, LockedAt: time.Now(), LockedBy: holder}
		if lastErr = l.db.WithContext(ctx).Create(&row).Error; lastErr == nil {
			defer l.db.Where("id = ?", lockName).Delete(&lockRecord{})
			return fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
	return fmt.Errorf("migration lock not acquired after %d attempts: %w", l.retries, lastErr)
}
