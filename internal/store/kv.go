package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Set stores a JSON-encoded value under (namespace, key), replacing any
// previous value.
func (l *Local) Set(ctx context.Context, namespace, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", namespace, key, err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv (namespace, key, value, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		namespace, key, string(data))
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Get loads the value under (namespace, key) into out. Returns false with a
// nil error when the key does not exist.
func (l *Local) Get(ctx context.Context, namespace, key string, out any) (bool, error) {
	var data string
	err := l.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// Delete removes the value under (namespace, key). Missing keys are a no-op.
func (l *Local) Delete(ctx context.Context, namespace, key string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	return nil
}
