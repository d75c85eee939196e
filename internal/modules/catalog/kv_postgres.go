package catalog

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

type postgresKV struct{ db *sql.DB }

// OpenPostgresKV connects to dsn and keeps key/value pairs in the
// catalog_kv table, creating it if needed.
func OpenPostgresKV(ctx context.Context, dsn string) (KVClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	kv := &postgresKV{db: db}
	if err := kv.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

func (r *postgresKV) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_kv (
		  key        TEXT PRIMARY KEY,
		  value      JSONB NOT NULL,
		  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return errors.Wrap(err, "create catalog_kv")
}

func (r *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM catalog_kv WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *postgresKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`,
		key, string(value))
	return err
}

func (r *postgresKV) Close() error { return r.db.Close() }
