package imgflip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkonishi/memedex/internal/catalog"
)

func TestClient_FetchCatalog(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantEntries     []catalog.Entry
		wantError       bool
		wantErrorString string
	}{
		{
			name: "success",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/get_memes", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"success": true,
					"data": {
						"memes": [
							{"id": "181913649", "name": "Drake Hotline Bling", "url": "https://i.imgflip.com/30b1gx.jpg", "width": 1200, "height": 1200, "box_count": 2, "captions": 1250000},
							{"id": "112126428", "name": "Distracted Boyfriend", "url": "https://i.imgflip.com/1ur9b0.jpg", "width": 1200, "height": 800, "box_count": 3, "captions": 980000}
						]
					}
				}`))
			},
			wantEntries: []catalog.Entry{
				{ID: "181913649", Name: "Drake Hotline Bling", TemplateImageURL: "https://i.imgflip.com/30b1gx.jpg", Width: 1200, Height: 1200, TextBoxCount: 2, UsageCount: 1250000},
				{ID: "112126428", Name: "Distracted Boyfriend", TemplateImageURL: "https://i.imgflip.com/1ur9b0.jpg", Width: 1200, Height: 800, TextBoxCount: 3, UsageCount: 980000},
			},
		},
		{
			name: "upstream reports failure",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": false, "error_message": "internal error"}`))
			},
			wantError:       true,
			wantErrorString: "catalog source reported failure",
		},
		{
			name: "payload missing meme list",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": true, "data": {}}`))
			},
			wantError:       true,
			wantErrorString: "missing the meme list",
		},
		{
			name: "empty meme list is a valid payload",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": true, "data": {"memes": []}}`))
			},
			wantEntries: []catalog.Entry{},
		},
		{
			name: "client error is not retried",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantError:       true,
			wantErrorString: "status code: 403",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, 0)
			defer func() {
				_ = client.Close()
			}()

			got, err := client.FetchCatalog(context.Background())
			if tc.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantEntries, got)
		})
	}
}

func TestClient_FetchCatalog_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"memes": [{"id": "1", "name": "One Does Not Simply", "url": "https://i.imgflip.com/1bij.jpg", "width": 568, "height": 335, "box_count": 2, "captions": 500}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2)
	defer func() {
		_ = client.Close()
	}()

	got, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "One Does Not Simply", got[0].Name)
	assert.Equal(t, int32(2), calls.Load())
}
