package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store on an embedded BadgerDB instance. It is the
// default backend: no network dependency, native per-entry TTL enforced by
// Badger's GC, and prefix iteration for ListKeys. Expired keys surface as
// ErrKeyNotFound, which this store reports as a plain miss.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database at dir. An empty dir opens
// an in-memory database, which tests use to avoid touching disk.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts = opts.WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.Open() > %w", err)
	}
	return &BadgerStore{db: db}, nil
}

var _ Store = (*BadgerStore)(nil)

// Close releases the underlying database. The store must not be used after
// Close returns.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger view > %w", err)
	}
	return value, true, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger update > %w", err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) (int, error) {
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		if err := txn.Delete([]byte(key)); err != nil {
			return err
		}
		count = 1
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger delete > %w", err)
	}
	return count, nil
}

func (s *BadgerStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger iterate > %w", err)
	}
	return keys, nil
}

func (s *BadgerStore) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	var remaining time.Duration
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if expiresAt := item.ExpiresAt(); expiresAt > 0 {
			remaining = time.Until(time.Unix(int64(expiresAt), 0))
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("badger view > %w", err)
	}
	return remaining, true, nil
}
