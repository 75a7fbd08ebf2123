package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

var _ repository.KVRepository = (*KVDB)(nil)

// KVDB is the namespaced key-value table.
type KVDB struct {
	conn *sql.DB
}

func (k *KVDB) Get(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := k.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("key", namespace+"/"+key)
		}
		return "", fmt.Errorf("sqlite: getting %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// Set inserts or overwrites the value.
func (k *KVDB) Set(ctx context.Context, namespace, key, value string) error {
	_, err := k.conn.ExecContext(ctx,
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete is a no-op for a missing key.
func (k *KVDB) Delete(ctx context.Context, namespace, key string) error {
	_, err := k.conn.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// List returns every row of namespace ordered by key.
func (k *KVDB) List(ctx context.Context, namespace string) ([]model.KV, error) {
	rows, err := k.conn.QueryContext(ctx,
		`SELECT namespace, key, value, updated_at FROM kv WHERE namespace = ? ORDER BY key`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", namespace, err)
	}
	defer rows.Close()

	out := []model.KV{}
	for rows.Next() {
		var kv model.KV
		if err := rows.Scan(&kv.Namespace, &kv.Key, &kv.Value, &kv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning kv row: %w", err)
		}
		out = append(out, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating kv rows: %w", err)
	}
	return out, nil
}
