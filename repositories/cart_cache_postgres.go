package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the part of *pgxpool.Pool the cache needs.
type PgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresCartCache struct {
	db PgxConn
}

func NewPostgresCartCache(db PgxConn) *PostgresCartCache {
	return &PostgresCartCache{db: db}
}

func (r *PostgresCartCache) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT payload FROM cart_cache WHERE cache_key = $1`

	var payload []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "select cart_cache")
	}
	return payload, nil
}

func (r *PostgresCartCache) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO cart_cache (cache_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, key, value, time.Now()); err != nil {
		return errors.Wrap(err, "upsert cart_cache")
	}
	return nil
}

func (r *PostgresCartCache) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_cache WHERE cache_key = $1`, key); err != nil {
		return errors.Wrap(err, "delete cart_cache")
	}
	return nil
}
