// Package stremio implements the StremioClient port against the Stremio session API.
package stremio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StremioClient = (*Client)(nil)

// Client implements the driven.StremioClient port. Every operation is a single
// POST with a `type` discriminator in the JSON body; the response carries either
// a `result` payload or an in-band `error`. Both transport failures and in-band
// errors are normalized to one error value naming the cause. The client never
// retries; each call is issued exactly once.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client for the given API base URL
// (e.g. "https://api.strem.io/api").
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPClient(&http.Client{}, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// userJSON is the wire shape of the Stremio user object.
type userJSON struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func (u userJSON) toModel() model.User {
	return model.User{ID: u.ID, Email: u.Email}
}

// Authenticate exchanges email/password for a fresh authKey.
func (c *Client) Authenticate(ctx context.Context, email, password string) (driven.AuthResult, error) {
	body := struct {
		Type     string `json:"type"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Type: "Auth", Email: email, Password: password}

	var result struct {
		AuthKey string   `json:"authKey"`
		User    userJSON `json:"user"`
	}
	if err := c.post(ctx, "login", body, &result); err != nil {
		return driven.AuthResult{}, err
	}
	if result.AuthKey == "" {
		return driven.AuthResult{}, fmt.Errorf("stremio login: response carried no authKey")
	}

	return driven.AuthResult{AuthKey: result.AuthKey, User: result.User.toModel()}, nil
}

// GetUser fetches the profile associated with the authKey.
func (c *Client) GetUser(ctx context.Context, authKey string) (model.User, error) {
	body := struct {
		Type    string `json:"type"`
		AuthKey string `json:"authKey"`
	}{Type: "GetUser", AuthKey: authKey}

	var result userJSON
	if err := c.post(ctx, "getUser", body, &result); err != nil {
		return model.User{}, err
	}
	return result.toModel(), nil
}

// ListAddons fetches the account's installed addon collection.
// An absent addons field yields an empty slice.
func (c *Client) ListAddons(ctx context.Context, authKey string) ([]model.Addon, error) {
	body := struct {
		Type    string `json:"type"`
		AuthKey string `json:"authKey"`
		Update  bool   `json:"update"`
	}{Type: "AddonCollectionGet", AuthKey: authKey, Update: true}

	var result struct {
		Addons []struct {
			TransportURL string `json:"transportUrl"`
			Manifest     struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"manifest"`
		} `json:"addons"`
	}
	if err := c.post(ctx, "addonCollectionGet", body, &result); err != nil {
		return nil, err
	}

	addons := make([]model.Addon, 0, len(result.Addons))
	for _, a := range result.Addons {
		addons = append(addons, model.Addon{
			TransportURL: a.TransportURL,
			ID:           a.Manifest.ID,
			Name:         a.Manifest.Name,
		})
	}
	return addons, nil
}

// ListLibrary fetches datastore items for the given collection (e.g. "libraryItem").
// An absent result yields an empty slice.
func (c *Client) ListLibrary(ctx context.Context, authKey, collection string) ([]model.LibraryItem, error) {
	body := struct {
		Type       string `json:"type"`
		AuthKey    string `json:"authKey"`
		Collection string `json:"collection"`
		All        bool   `json:"all"`
	}{Type: "DatastoreGet", AuthKey: authKey, Collection: collection, All: true}

	var result []struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.post(ctx, "datastoreGet", body, &result); err != nil {
		return nil, err
	}

	items := make([]model.LibraryItem, 0, len(result))
	for _, it := range result {
		items = append(items, model.LibraryItem{ID: it.ID, Name: it.Name, Type: it.Type})
	}
	return items, nil
}

// post issues a single POST to {baseURL}/{op}, unwraps the {result}|{error}
// envelope, and decodes the result payload into out when out is non-nil.
func (c *Client) post(ctx context.Context, op string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("stremio %s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("stremio %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stremio %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("stremio %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stremio %s: status %d: %s", op, resp.StatusCode, snippet(data))
	}

	var env struct {
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("stremio %s: decode response: %w", op, err)
	}

	if msg := errorText(env.Error); msg != "" {
		return fmt.Errorf("stremio %s: %s", op, msg)
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("stremio %s: decode result: %w", op, err)
	}
	return nil
}

// errorText extracts a human-readable message from the in-band error field,
// which the API sends either as a plain string or as an object with a message.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return string(raw)
}

// snippet truncates an upstream body for inclusion in error messages.
func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
