package models

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// OpenDB opens a pgx pool sized for either a long running daemon or a
// serverless function, pings it and applies pending migrations.
func OpenDB(ctx context.Context, dsn string, serverless bool) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse db config")
	}

	if serverless {
		config.MaxConns = 5
		config.MinConns = 0
		config.MaxConnLifetime = 5 * time.Minute
		config.MaxConnIdleTime = 1 * time.Minute
		config.HealthCheckPeriod = 1 * time.Minute
	} else {
		config.MaxConns = 10
		config.MinConns = 1
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping db")
	}

	if err := runMigrations(dsn); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func runMigrations(dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return errors.Wrap(err, "open db for migrations")
	}
	defer sqlDB.Close()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migration source")
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return errors.Wrap(err, "initialize migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
