package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hkonishi/memedex/internal/kvstore"
	mock_inference "github.com/hkonishi/memedex/internal/mocks/inference"
)

func TestCache_GetSuggestions_GeneratesAndCaches(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	store := kvstore.NewMemoryStore()

	client.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("Drake Hotline Bling\nDistracted Boyfriend\nTwo Buttons\nChange My Mind\nExpanding Brain", nil)

	cache := NewCache(store, client, 0, nil)

	got := cache.GetSuggestions(ctx)
	assert.Equal(t, []string{
		"Drake Hotline Bling",
		"Distracted Boyfriend",
		"Two Buttons",
		"Change My Mind",
		"Expanding Brain",
	}, got)

	// Second call is served from the store; Generate is not called again.
	got = cache.GetSuggestions(ctx)
	assert.Len(t, got, 5)

	remaining, found, err := store.TTL(ctx, kvstore.SuggestionsKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Greater(t, remaining, time.Duration(0))
}

func TestCache_GetSuggestions_FallbackOnGenerationFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	store := kvstore.NewMemoryStore()

	// Every call fails; every call must retry generation because the
	// fallback is never cached.
	client.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("rate limited")).
		Times(3)

	cache := NewCache(store, client, 0, nil)

	for i := 0; i < 3; i++ {
		got := cache.GetSuggestions(ctx)
		assert.GreaterOrEqual(t, len(got), 3)
		assert.LessOrEqual(t, len(got), 5)
		for _, suggestion := range got {
			assert.NotEmpty(t, suggestion)
		}
	}

	_, found, err := store.Get(ctx, kvstore.SuggestionsKey)
	require.NoError(t, err)
	assert.False(t, found, "the fallback list must not be cached")
}

func TestCache_GetSuggestions_FallbackOnMalformedResponse(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	store := kvstore.NewMemoryStore()

	client.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("I'm sorry, I can't help with that.", nil)

	cache := NewCache(store, client, 0, nil)

	got := cache.GetSuggestions(ctx)
	assert.GreaterOrEqual(t, len(got), 3)
	assert.LessOrEqual(t, len(got), 5)

	_, found, err := store.Get(ctx, kvstore.SuggestionsKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetSuggestions_AcceptsThreeUsableLines(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	store := kvstore.NewMemoryStore()

	client.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("Two Buttons\n\nThis Is Fine\nRoll Safe\n", nil)

	cache := NewCache(store, client, 0, nil)

	got := cache.GetSuggestions(ctx)
	assert.Equal(t, []string{"Two Buttons", "This Is Fine", "Roll Safe"}, got)

	_, found, err := store.Get(ctx, kvstore.SuggestionsKey)
	require.NoError(t, err)
	assert.True(t, found, "an accepted response must be cached")
}

func TestCache_GetSuggestions_IgnoresCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kvstore.SuggestionsKey, []byte("{not json"), time.Hour))

	client.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("Success Kid\nDisaster Girl\nAncient Aliens", nil)

	cache := NewCache(store, client, 0, nil)
	got := cache.GetSuggestions(ctx)
	assert.Len(t, got, 3)
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "plain lines",
			response: "Drake Hotline Bling\nTwo Buttons",
			want:     []string{"Drake Hotline Bling", "Two Buttons"},
		},
		{
			name:     "numbered list",
			response: "1. Drake Hotline Bling\n2) Two Buttons\n3. This Is Fine",
			want:     []string{"Drake Hotline Bling", "Two Buttons", "This Is Fine"},
		},
		{
			name:     "bullets and quotes",
			response: "- \"Drake Hotline Bling\"\n* 'Two Buttons'\n• This Is Fine",
			want:     []string{"Drake Hotline Bling", "Two Buttons", "This Is Fine"},
		},
		{
			name:     "caps at five lines",
			response: "a1\nb2\nc3\nd4\ne5\nf6\ng7",
			want:     []string{"a1", "b2", "c3", "d4", "e5"},
		},
		{
			name:     "blank input",
			response: "   \n\n\t\n",
			want:     nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseSuggestions(tc.response))
		})
	}
}

func TestSampleFallback(t *testing.T) {
	got := sampleFallback(5)
	require.Len(t, got, 5)
	seen := map[string]bool{}
	for _, suggestion := range got {
		assert.NotEmpty(t, suggestion)
		assert.False(t, seen[suggestion], "fallback sample must not repeat names")
		seen[suggestion] = true
	}

	// Asking for more than the list holds returns the whole list.
	assert.Len(t, sampleFallback(1000), len(fallbackSuggestions))
}

func TestFallbackListRoundTripsThroughJSON(t *testing.T) {
	// The cached representation must round-trip exactly.
	encoded, err := json.Marshal(fallbackSuggestions)
	require.NoError(t, err)
	var decoded []string
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, fallbackSuggestions, decoded)
}
