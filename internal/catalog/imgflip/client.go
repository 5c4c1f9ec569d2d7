// Package imgflip implements the catalog source against the imgflip
// get_memes endpoint.
package imgflip

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/hkonishi/memedex/internal/catalog"
)

// DefaultBaseURL is the public imgflip API endpoint.
const DefaultBaseURL = "https://api.imgflip.com"

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

const DefaultMaxRetryAttempts = 2

// NewClient creates a catalog source client. baseURL may be empty to use the
// public endpoint; tests point it at an httptest server. retryAttempts of
// zero selects DefaultMaxRetryAttempts.
func NewClient(baseURL string, retryAttempts uint) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if retryAttempts == 0 {
		retryAttempts = DefaultMaxRetryAttempts
	}
	client := resty.New()
	client.SetBaseURL(baseURL)

	return &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type getMemesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []memePayload `json:"memes"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

type memePayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
	Captions int    `json:"captions"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "status code: 5") || strings.Contains(errStr, "status code: 429") {
		return true
	}
	return false
}

// FetchCatalog implements catalog.Source. It validates the payload shape at
// the boundary: a non-success response or a missing meme list is a fetch
// failure, never an empty catalog.
func (client *Client) FetchCatalog(ctx context.Context) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := retry.Do(
		func() error {
			fetched, err := client.fetchCatalog(ctx)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			entries = fetched
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}
	return entries, nil
}

func (client *Client) fetchCatalog(ctx context.Context) ([]catalog.Entry, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&getMemesResponse{}).
		Get("/get_memes")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("status code: %d, body: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*getMemesResponse)
	if responseBody == nil {
		return nil, fmt.Errorf("empty response body: %s", response.String())
	}
	if !responseBody.Success {
		return nil, fmt.Errorf("catalog source reported failure: %s", responseBody.ErrorMessage)
	}
	if responseBody.Data.Memes == nil {
		return nil, fmt.Errorf("catalog source payload is missing the meme list")
	}

	entries := make([]catalog.Entry, 0, len(responseBody.Data.Memes))
	for _, meme := range responseBody.Data.Memes {
		entries = append(entries, catalog.Entry{
			ID:               meme.ID,
			Name:             meme.Name,
			TemplateImageURL: meme.URL,
			Width:            meme.Width,
			Height:           meme.Height,
			TextBoxCount:     meme.BoxCount,
			UsageCount:       meme.Captions,
		})
	}
	return entries, nil
}
