package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hpungsan/jetstorage/internal/kv"
)

// KV implements kv.Store on the kv table.
// Versions are per-row counters, so CompareAndSwap is a single conditional
// statement. Delete leaves a tombstone row: the counter keeps climbing across
// delete and re-create, and a stale version can never match again.
type KV struct {
	db *sql.DB
}

var _ kv.Store = (*KV)(nil)

// NewKV wraps an initialized database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get implements kv.Store.
func (s *KV) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		value   []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, version FROM kv WHERE key = ? AND deleted = 0`, key,
	).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return value, version, nil
}

// Set implements kv.Store.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = kv.version + 1,
			updated_at = excluded.updated_at,
			deleted = 0
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UnixMilli())
	return err
}

// CompareAndSwap implements kv.Store.
func (s *KV) CompareAndSwap(ctx context.Context, key string, version int64, value []byte) (bool, error) {
	now := time.Now().UnixMilli()

	var (
		result sql.Result
		err    error
	)
	if version == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				version = kv.version + 1,
				updated_at = excluded.updated_at,
				deleted = 0
			WHERE kv.deleted = 1
		`, key, value, now)
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE kv SET value = ?, version = version + 1, updated_at = ?
			WHERE key = ? AND version = ? AND deleted = 0
		`, value, now, key, version)
	}
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// Delete implements kv.Store.
func (s *KV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE kv SET value = x'', version = version + 1, updated_at = ?, deleted = 1
		WHERE key = ? AND deleted = 0
	`, time.Now().UnixMilli(), key)
	return err
}
