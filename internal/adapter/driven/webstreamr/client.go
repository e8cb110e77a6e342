// Package webstreamr implements the StreamSource port against a WebStreamr
// addon endpoint.
package webstreamr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StreamSource = (*Client)(nil)

// Client fetches stream candidate lists from a WebStreamr addon endpoint.
// Responses are cached in memory via httpcache so repeated lookups for the
// same title within a session don't re-hit the upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client for the given addon base URL
// (e.g. "https://webstreamr.hayd.uk") with an in-memory caching transport.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPClient(httpcache.NewMemoryCacheTransport().Client(), baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchStreams returns the ordered stream candidates for a content ID.
// An empty upstream list is a normal outcome, returned as an empty slice.
func (c *Client) FetchStreams(ctx context.Context, contentType, contentID string) ([]model.StreamDescriptor, error) {
	endpoint := fmt.Sprintf("%s/stream/%s/%s.json", c.baseURL, contentType, url.PathEscape(contentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("webstreamr: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webstreamr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("webstreamr: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Streams []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			URL         string `json:"url"`
		} `json:"streams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("webstreamr: decode response: %w", err)
	}

	streams := make([]model.StreamDescriptor, 0, len(payload.Streams))
	for _, s := range payload.Streams {
		streams = append(streams, model.StreamDescriptor{
			Name:        s.Name,
			Description: s.Description,
			URL:         s.URL,
		})
	}
	return streams, nil
}
