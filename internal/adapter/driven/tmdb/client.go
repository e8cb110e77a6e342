// Package tmdb implements a thin pass-through client for the TMDB v3 API.
// The driving layer proxies these payloads to the SPA verbatim, so responses
// are returned as raw JSON rather than decoded into domain types.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gregjones/httpcache"
)

// Client calls the TMDB API with a fixed API key. GET responses are cached
// in memory via httpcache, which honors TMDB's cache headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Client for the TMDB v3 API with an in-memory caching transport.
func NewClient(apiKey string) *Client {
	return NewClientWithHTTPClient(httpcache.NewMemoryCacheTransport().Client(), "https://api.themoviedb.org/3", apiKey)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Search runs a title search. contentType is "movie" or "tv".
func (c *Client) Search(ctx context.Context, contentType, query string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/search/%s", url.PathEscape(contentType)), url.Values{"query": {query}})
}

// ExternalIDs fetches external identifiers (IMDB et al) for a title.
func (c *Client) ExternalIDs(ctx context.Context, contentType, id string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/%s/%s/external_ids", url.PathEscape(contentType), url.PathEscape(id)), nil)
}

// Season fetches episode metadata for one season of a TV show.
func (c *Client) Season(ctx context.Context, id, season string) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/tv/%s/season/%s", url.PathEscape(id), url.PathEscape(season)), nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tmdb: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tmdb: status %d", resp.StatusCode)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("tmdb: response is not valid JSON")
	}
	return json.RawMessage(data), nil
}
