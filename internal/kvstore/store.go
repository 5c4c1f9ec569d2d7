// Package kvstore abstracts the shared key-value store that backs every
// cache tier. The store is multi-tenant: each cache owns a distinct key
// namespace (see keys.go) so catalog, result, session and suggestion data
// never collide.
package kvstore

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=../mocks/kvstore/mock_store.go -package=mock_kvstore

// Store defines the operations every backend must support. Values are opaque
// bytes; callers serialize their own records and must round-trip exactly.
//
// A ttl of zero on Set means the entry never expires. TTL reports the
// remaining lifetime of a key (zero for non-expiring entries) so callers can
// verify sliding-expiration behavior.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (count int, err error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	TTL(ctx context.Context, key string) (remaining time.Duration, found bool, err error)
}
