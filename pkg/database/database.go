// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/actigraphy/pkg/lifecycle"
)

// ErrNotReady indicates the database connection could not be established at startup.
var ErrNotReady = errors.New("database not ready")

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn         *sql.DB
	logger       *slog.Logger
	connTimeout  time.Duration
	pingAttempts uint
	pingDelay    time.Duration
}

// New opens a pool for cfg without connecting. The first connection is
// made by the startup hook Start registers.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:         db,
		logger:       logger.With("system", "database"),
		connTimeout:  cfg.ConnTimeoutDuration(),
		pingAttempts: uint(max(cfg.PingAttempts, 1)),
		pingDelay:    cfg.PingDelayDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")
	lc.OnStartup(func() { d.connect(lc) })
	lc.OnShutdown(func() { d.close(lc) })
	return nil
}

// connect pings until the database answers or the attempts run out. A
// failure is recorded on lc wrapped in ErrNotReady.
func (d *database) connect(lc *lifecycle.Coordinator) {
	start := time.Now()
	if err := d.ping(lc.Context()); err != nil {
		d.logger.Error("database ping failed", "attempts", d.pingAttempts, "error", err)
		lc.Fail("database", fmt.Errorf("%w: %w", ErrNotReady, err))
		return
	}
	d.logger.Info("database connection established", "elapsed", time.Since(start).Round(time.Millisecond))
}

func (d *database) close(lc *lifecycle.Coordinator) {
	<-lc.Context().Done()

	stats := d.conn.Stats()
	d.logger.Info("closing database connection", "open", stats.OpenConnections, "in_use", stats.InUse)

	if err := d.conn.Close(); err != nil {
		d.logger.Error("database close failed", "error", err)
		return
	}
	d.logger.Info("database connection closed")
}

// ping retries only at startup; request-time queries are never retried.
func (d *database) ping(ctx context.Context) error {
	return retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
			defer cancel()
			return d.conn.PingContext(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(d.pingAttempts),
		retry.Delay(d.pingDelay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Warn("retrying database ping", "attempt", n+1, "error", err)
		}),
	)
}
