package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"
)

type SQLiteCartCache struct {
	db *sql.DB
}

// NewSQLiteCartCache opens (creating if needed) the on-device cache file.
func NewSQLiteCartCache(path string) (*SQLiteCartCache, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create cache directory")
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_cache (
			cache_key  TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create cart_cache table")
	}

	return &SQLiteCartCache{db: db}, nil
}

func (r *SQLiteCartCache) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM cart_cache WHERE cache_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "select cart_cache")
	}
	return payload, nil
}

func (r *SQLiteCartCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_cache (cache_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "upsert cart_cache")
	}
	return nil
}

func (r *SQLiteCartCache) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_cache WHERE cache_key = ?`, key); err != nil {
		return errors.Wrap(err, "delete cart_cache")
	}
	return nil
}

func (r *SQLiteCartCache) Close() error {
	return r.db.Close()
}
