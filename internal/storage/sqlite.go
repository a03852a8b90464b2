package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // "sqlite3", needs cgo
	_ "modernc.org/sqlite"          // "sqlite", pure Go
)

const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// Open opens the SQLite database at path with the given driver, creating the
// parent directory when needed. Busy timeout + WAL so readers don't block the
// single writer.
func Open(ctx context.Context, driver, path string) (*sql.DB, error) {
	dsn, err := dsnFor(driver, path)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func dsnFor(driver, path string) (string, error) {
	switch driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path), nil
	case DriverMattn:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Migrate runs a schema script. Scripts are expected to be idempotent
// (CREATE ... IF NOT EXISTS).
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Size reports the on-disk size of the main database file, 0 if unknown.
func Size(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
