package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rawmart-be/internal/config"

	_ "github.com/lib/pq"
)

// PoolOptions are applied to every pool the manager opens.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

func poolOptionsFrom(cfg *config.Config) PoolOptions {
	return PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnectTimeout:  cfg.DBConnectTimeout,
	}
}

// PostgresOpener returns an Opener dialing cfg.DSN() with the lib/pq driver.
func PostgresOpener(cfg *config.Config) Opener {
	dsn := cfg.DSN()
	pool := poolOptionsFrom(cfg)
	return func(ctx context.Context) (*sql.DB, error) {
		return newDatabaseWithDriver(ctx, "postgres", dsn, pool)
	}
}

func newDatabaseWithDriver(ctx context.Context, driverName, dsn string, pool PoolOptions) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	timeout := pool.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}
