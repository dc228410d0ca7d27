package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*Postgres)(nil)

// Postgres keeps records in the kv_store table (see migrations/).
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (*Record, error) {
	const q = `
SELECT key, value, version, updated_at
FROM kv_store
WHERE key = $1
`
	var rec Record
	if err := p.db.QueryRow(ctx, q, key).Scan(&rec.Key, &rec.Value, &rec.Version, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return &rec, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value json.RawMessage) (int64, error) {
	const q = `
INSERT INTO kv_store (key, value)
VALUES ($1, CAST($2 AS jsonb))
ON CONFLICT (key) DO UPDATE SET
  value = EXCLUDED.value,
  version = kv_store.version + 1,
  updated_at = NOW()
RETURNING version
`
	var version int64
	if err := p.db.QueryRow(ctx, q, key, string(value)).Scan(&version); err != nil {
		return 0, fmt.Errorf("kv set %s: %w", key, err)
	}
	return version, nil
}

func (p *Postgres) SetIfVersion(ctx context.Context, key string, value json.RawMessage, version int64) (int64, error) {
	const qInsert = `
INSERT INTO kv_store (key, value)
VALUES ($1, CAST($2 AS jsonb))
ON CONFLICT (key) DO NOTHING
RETURNING version
`
	const qUpdate = `
UPDATE kv_store
SET value = CAST($2 AS jsonb), version = version + 1, updated_at = NOW()
WHERE key = $1 AND version = $3
RETURNING version
`
	var (
		next int64
		err  error
	)
	if version == 0 {
		err = p.db.QueryRow(ctx, qInsert, key, string(value)).Scan(&next)
	} else {
		err = p.db.QueryRow(ctx, qUpdate, key, string(value), version).Scan(&next)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrVersionMismatch
		}
		return 0, fmt.Errorf("kv conditional set %s: %w", key, err)
	}
	return next, nil
}

func (p *Postgres) GetByPrefix(ctx context.Context, prefix string) ([]Record, error) {
	const q = `
SELECT key, value, version, updated_at
FROM kv_store
WHERE key LIKE $1 ESCAPE '\'
`
	rows, err := p.db.Query(ctx, q, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("kv prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Del(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_store WHERE key = $1`
	if _, err := p.db.Exec(ctx, q, key); err != nil {
		return fmt.Errorf("kv del %s: %w", key, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
