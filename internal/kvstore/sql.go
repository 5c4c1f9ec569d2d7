package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Schema creates the table backing SQLStore. Deployments that already run
// MySQL apply it once at provision time; EnsureSchema does the same at
// startup for convenience.
const Schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	cache_key VARCHAR(512) NOT NULL,
	cache_value MEDIUMBLOB NOT NULL,
	expires_at DATETIME(3) NULL,
	updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	PRIMARY KEY (cache_key)
)`

// SQLStore implements Store on MySQL. Expiry is a nullable expires_at column
// checked on every read; expired rows are treated as absent and overwritten
// in place by the next Set.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLStore creates a SQLStore on an open connection. The store does not
// own the connection; the caller manages its lifecycle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

var _ Store = (*SQLStore)(nil)

// EnsureSchema creates the cache table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("db.ExecContext(create cache_entries) > %w", err)
	}
	return nil
}

type cacheRow struct {
	CacheKey   string       `db:"cache_key"`
	CacheValue []byte       `db:"cache_value"`
	ExpiresAt  sql.NullTime `db:"expires_at"`
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		"SELECT cache_key, cache_value, expires_at FROM cache_entries WHERE cache_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("db.GetContext(cache_entry) > %w", err)
	}
	if row.ExpiresAt.Valid && !row.ExpiresAt.Time.After(s.now()) {
		return nil, false, nil
	}
	return row.CacheValue, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: s.now().Add(ttl), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (cache_key, cache_value, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE cache_value = VALUES(cache_value), expires_at = VALUES(expires_at)`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(upsert cache_entry) > %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE cache_key = ?", key)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete cache_entry) > %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("res.RowsAffected() > %w", err)
	}
	return int(affected), nil
}

func (s *SQLStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT cache_key FROM cache_entries
		WHERE cache_key LIKE ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY cache_key`,
		escapeLike(prefix)+"%", s.now())
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(cache_keys) > %w", err)
	}
	return keys, nil
}

func (s *SQLStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		"SELECT cache_key, cache_value, expires_at FROM cache_entries WHERE cache_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("db.GetContext(cache_entry) > %w", err)
	}
	if !row.ExpiresAt.Valid {
		return 0, true, nil
	}
	remaining := row.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return 0, false, nil
	}
	return remaining, true, nil
}

// escapeLike escapes the MySQL LIKE metacharacters in a literal prefix.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
