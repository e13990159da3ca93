package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgKV is a Postgres-backed KV holding one row per collection key.
type PgKV struct {
	db *sql.DB
}

// NewPgKV opens the database and makes sure the backing table exists.
// The connection string should look like
// postgresql://localhost:5432/georemind?user=admn&password=passwd
func NewPgKV(connStr string) (*PgKV, error) {
	d, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed opening database")
	}

	if err = d.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed pinging database")
	}

	if _, err = d.Exec(`CREATE TABLE IF NOT EXISTS kv_state(
key TEXT PRIMARY KEY,
value BYTEA NOT NULL,
updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return nil, errors.Wrap(err, "failed ensuring kv_state table")
	}

	return &PgKV{db: d}, nil
}

func (p *PgKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key=$1`, key).Scan(&value)

	switch {
	case err == sql.ErrNoRows:
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrapf(err, "failed reading key %q", key)
	}

	return value, true, nil
}

func (p *PgKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, `INSERT INTO kv_state(key, value, updated_at)
VALUES($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`, key, value); err != nil {
		return errors.Wrapf(err, "failed writing key %q", key)
	}
	return nil
}

func (p *PgKV) Close() error {
	return p.db.Close()
}
