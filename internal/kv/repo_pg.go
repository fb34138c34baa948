package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo on the kv_entries table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context, userID, pattern string, includeValues bool) ([]Item, error) {
	const query = `
SELECT key, value
FROM kv_entries
WHERE user_id = $1 AND key LIKE $2 ESCAPE '\'
ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID, toLike(pattern))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Key, &item.Value); err != nil {
			return nil, err
		}
		if !includeValues {
			item.Value = ""
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, userID, key string) (string, error) {
	const query = `
SELECT value
FROM kv_entries
WHERE user_id = $1 AND key = $2
LIMIT 1`
	var value string
	if err := r.DB.QueryRowContext(ctx, query, userID, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts a value. Updating an existing key keeps its original position.
func (r *PGRepo) Set(ctx context.Context, userID, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	const query = `
INSERT INTO kv_entries (user_id, key, value, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (user_id, key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, userID, key, value)
	return err
}

func (r *PGRepo) Flush(ctx context.Context, userID string) error {
	const query = `DELETE FROM kv_entries WHERE user_id = $1`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

var _ Repo = (*PGRepo)(nil)
