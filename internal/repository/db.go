package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/audity/internal/common"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is the run-history database handle. Postgres goes through a pgx pool
// wrapped as *sql.DB; SQLite uses the pure-Go driver.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect Dialect
	log     *slog.Logger
}

// Open connects according to the DSN scheme (postgres://, postgresql://,
// sqlite://, file:, or :memory:) and creates the tables if needed.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	var (
		db  *DB
		err error
	)
	switch {
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		db, err = openPostgres(ctx, cfg, logger)
	case strings.HasPrefix(cfg.DSN, "sqlite://"), strings.HasPrefix(cfg.DSN, "file:"), cfg.DSN == ":memory:":
		db, err = openSQLite(cfg, logger)
	default:
		return nil, common.NewAppError("DB_ERROR", "unsupported DSN scheme", common.ErrInvalidInput)
	}
	if err != nil {
		logger.Error("failed to connect to database", "dialect", dialectOf(cfg.DSN), "error", err)
		return nil, common.NewAppError("DB_ERROR", "connect", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}

	if err := db.migrate(ctx); err != nil {
		db.Close()
		return nil, common.NewAppError("DB_ERROR", "migrate", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	logger.Info("successfully connected to database", "dialect", db.dialect)
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "audity"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: Postgres, log: logger}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := strings.TrimPrefix(cfg.DSN, "sqlite://")
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a second connection to :memory: would see an empty database
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
	}
	return &DB{sql: sqlDB, dialect: SQLite, log: logger}, nil
}

func dialectOf(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres") {
		return Postgres
	}
	return SQLite
}

// Dialect reports which backend is in use.
func (d *DB) Dialect() Dialect { return d.dialect }

// Close closes the database connections gracefully
func (d *DB) Close() {
	d.log.Info("closing database connections")
	if err := d.sql.Close(); err != nil {
		d.log.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.log.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.log.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	d.log.Debug("database ping successful")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		documents   INTEGER NOT NULL,
		accepted    INTEGER NOT NULL,
		records     INTEGER NOT NULL,
		gate_open   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_diagnostics (
		run_id       TEXT NOT NULL REFERENCES audit_runs(run_id),
		seq          INTEGER NOT NULL,
		kind         TEXT NOT NULL,
		severity     TEXT NOT NULL,
		document     TEXT NOT NULL,
		unique_id    TEXT NOT NULL,
		company_name TEXT NOT NULL,
		date         TEXT NOT NULL,
		message      TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
