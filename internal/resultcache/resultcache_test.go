package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hkonishi/memedex/internal/kvstore"
	mock_kvstore "github.com/hkonishi/memedex/internal/mocks/kvstore"
)

func testRecord() ResolvedRecord {
	return ResolvedRecord{
		CanonicalName:    "Drake Hotline Bling",
		SourcePageURL:    "https://imgflip.com/meme/Drake-Hotline-Bling",
		TemplateImageURL: "https://i.imgflip.com/30b1gx.jpg",
		Narrative:        "Drake recoils from one option and approves of another.",
		Summary:          "Two-panel approval format.",
		ExampleImages: []ExampleImage{
			{AltText: "drake example one", URL: "https://i.imgflip.com/example1.jpg"},
			{AltText: "drake example two", URL: "https://i.imgflip.com/example2.jpg"},
		},
		CachedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := New(kvstore.NewMemoryStore(), 0, 0, nil)
	record := testRecord()

	cache.CacheResult(ctx, "Drake Hotline Bling", record)

	got := cache.GetResult(ctx, "drake hotline bling")
	require.NotNil(t, got, "keys differing only in case must hit the same entry")
	assert.Equal(t, record, *got)
}

func TestCache_GetResult_Miss(t *testing.T) {
	cache := New(kvstore.NewMemoryStore(), 0, 0, nil)
	assert.Nil(t, cache.GetResult(context.Background(), "never cached"))
}

func TestCache_RecordExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := kvstore.NewMemoryStoreWithClock(func() time.Time { return now })
	cache := New(store, 0, 0, nil)

	cache.CacheResult(ctx, "drake", testRecord())

	now = now.Add(DefaultRecordTTL + time.Minute)
	assert.Nil(t, cache.GetResult(ctx, "drake"), "record must expire after its TTL")

	// The image namespace outlives the narrative record.
	imageURL, found := cache.GetTemplateImage(ctx, "drake")
	require.True(t, found)
	assert.Equal(t, "https://i.imgflip.com/30b1gx.jpg", imageURL)

	now = now.Add(DefaultImageTTL)
	_, found = cache.GetTemplateImage(ctx, "drake")
	assert.False(t, found)
}

func TestCache_StoreErrorsDegradeToMiss(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mock_kvstore.NewMockStore(ctrl)

	store.EXPECT().
		Get(gomock.Any(), "result:record:drake").
		Return(nil, false, errors.New("store unreachable"))
	store.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("store unreachable")).
		Times(2)

	cache := New(store, 0, 0, nil)

	assert.Nil(t, cache.GetResult(ctx, "drake"))
	// A failing store must not panic or surface an error to the caller.
	cache.CacheResult(ctx, "drake", testRecord())
}

func TestCache_CorruptRecordIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kvstore.ResultKey("drake"), []byte("{not json"), time.Hour))

	cache := New(store, 0, 0, nil)
	assert.Nil(t, cache.GetResult(ctx, "drake"))
}
