package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/NullInfinity/society-event-manager/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// New opens the SQLite membership database described by cfg.
func New(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	db, err := NewWithDSN(ctx, dsn(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", cfg.Path, "safe", cfg.Safe)
	return db, nil
}

// NewWithDSN opens a database from a raw driver DSN (useful for testing).
func NewWithDSN(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(sqldb)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func dsn(cfg config.DatabaseConfig) string {
	timeout := cfg.BusyTimeout
	if timeout == 0 {
		timeout = 5000
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout))
	return "file:" + cfg.Path + "?" + q.Encode()
}

// configurePool pins the pool to a single connection so that the store's
// session transaction and its reads share one SQLite connection.
func configurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(time.Duration(0))
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// RunMigrations creates the tables for models when they are missing.
// Existing tables are left untouched.
func RunMigrations(ctx context.Context, db *bun.DB, models ...interface{}) error {
	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model: %w", err)
		}
	}
	slog.Debug("database migrations completed successfully")
	return nil
}
