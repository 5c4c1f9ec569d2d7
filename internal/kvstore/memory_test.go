package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "result:record:drake", []byte(`{"name":"Drake"}`), time.Hour))

	value, found, err := store.Get(ctx, "result:record:drake")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte(`{"name":"Drake"}`), value)

	_, found, err = store.Get(ctx, "result:record:missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "session:abc", []byte("state"), time.Hour))

	_, found, err := store.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Hour + time.Second)

	_, found, err = store.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.False(t, found, "entry must expire once the TTL elapses")
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "catalog:imgflip:v1", []byte("catalog"), 0))

	now = now.Add(365 * 24 * time.Hour)

	_, found, err := store.Get(ctx, "catalog:imgflip:v1")
	require.NoError(t, err)
	assert.True(t, found)

	remaining, found, err := store.TTL(ctx, "catalog:imgflip:v1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestMemoryStore_TTLReportsRemaining(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "session:abc", []byte("state"), time.Hour))

	now = now.Add(20 * time.Minute)

	remaining, found, err := store.TTL(ctx, "session:abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 40*time.Minute, remaining)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "session:abc", []byte("state"), time.Hour))

	count, err := store.Delete(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.Delete(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStore_ListKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "result:record:a", []byte("a"), time.Hour))
	require.NoError(t, store.Set(ctx, "result:record:b", []byte("b"), time.Hour))
	require.NoError(t, store.Set(ctx, "result:image:a", []byte("img"), time.Hour))

	keys, err := store.ListKeys(ctx, "result:record:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"result:record:a", "result:record:b"}, keys)
}
