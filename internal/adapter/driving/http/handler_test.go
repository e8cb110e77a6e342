package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

type mockSessionStore struct {
	records map[string]model.SessionRecord
	putErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{records: make(map[string]model.SessionRecord)}
}

func (m *mockSessionStore) Put(_ context.Context, record model.SessionRecord) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.records[record.Email] = record
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, email string) (*model.SessionRecord, error) {
	r, ok := m.records[email]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *mockSessionStore) Latest(_ context.Context) (*model.SessionRecord, error) {
	var latest *model.SessionRecord
	for email := range m.records {
		r := m.records[email]
		if latest == nil || r.SavedAt.After(latest.SavedAt) {
			latest = &r
		}
	}
	return latest, nil
}

func (m *mockSessionStore) Delete(_ context.Context, email string) error {
	delete(m.records, email)
	return nil
}

type mockStremioClient struct {
	authKey string
	authErr error
	addons  []model.Addon
	library []model.LibraryItem
	listErr error
}

func (m *mockStremioClient) Authenticate(_ context.Context, email, _ string) (driven.AuthResult, error) {
	if m.authErr != nil {
		return driven.AuthResult{}, m.authErr
	}
	return driven.AuthResult{
		AuthKey: m.authKey,
		User:    model.User{ID: "user-1", Email: email},
	}, nil
}

func (m *mockStremioClient) GetUser(_ context.Context, _ string) (model.User, error) {
	return model.User{ID: "user-1"}, nil
}

func (m *mockStremioClient) ListAddons(_ context.Context, _ string) ([]model.Addon, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.addons, nil
}

func (m *mockStremioClient) ListLibrary(_ context.Context, _, _ string) ([]model.LibraryItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.library, nil
}

type mockStreamSource struct {
	streams []model.StreamDescriptor
	err     error
}

func (m *mockStreamSource) FetchStreams(_ context.Context, _, _ string) ([]model.StreamDescriptor, error) {
	return m.streams, m.err
}

func newTestHandler(store driven.SessionStore, client driven.StremioClient, source driven.StreamSource) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionSvc := application.NewSessionService(store, client, logger)
	streamSvc := application.NewStreamService(source, "VixSrc")
	h := NewHandler(sessionSvc, streamSvc, client, nil, 30*24*time.Hour, logger)

	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return mux
}

func TestLoginPersistsRecordAndSetsCookies(t *testing.T) {
	store := newMockSessionStore()
	client := &mockStremioClient{authKey: "fresh-key"}
	mux := newTestHandler(store, client, &mockStreamSource{})

	body := strings.NewReader(`{"email":"u@x.com","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "fresh-key", resp.AuthKey)
	assert.Equal(t, "u@x.com", resp.Email)

	record, ok := store.records["u@x.com"]
	require.True(t, ok, "login must persist a session record")
	assert.Equal(t, "fresh-key", record.AuthKey)
	assert.Equal(t, "hunter2", record.Password)
	assert.Equal(t, "user-1", record.UserID)
	assert.WithinDuration(t, time.Now(), record.SavedAt, time.Second)

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}
	for name, want := range map[string]string{
		"stremio_authKey":  "fresh-key",
		"stremio_email":    "u@x.com",
		"stremio_password": "hunter2",
	} {
		c, ok := byName[name]
		require.True(t, ok, "missing cookie %s", name)
		assert.Equal(t, want, c.Value)
		assert.True(t, c.HttpOnly)
	}
}

func TestLoginRejectsBadRequests(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{authKey: "k"}, &mockStreamSource{})

	for name, body := range map[string]string{
		"invalid json":     `{"email":`,
		"missing password": `{"email":"u@x.com"}`,
		"missing email":    `{"password":"p"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginAuthFailure(t *testing.T) {
	store := newMockSessionStore()
	client := &mockStremioClient{authErr: errors.New("User not found")}
	mux := newTestHandler(store, client, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"u@x.com","password":"bad"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
	assert.Empty(t, store.records)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginSucceedsDespitePersistFailure(t *testing.T) {
	store := newMockSessionStore()
	store.putErr = errors.New("disk full")
	mux := newTestHandler(store, &mockStremioClient{authKey: "k"}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"u@x.com","password":"p"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// The cookie channel still carries the session even when the durable
	// write failed.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestTokenPrefersCookieOverStore(t *testing.T) {
	store := newMockSessionStore()
	store.records["stored@x.com"] = model.SessionRecord{
		AuthKey: "stored-key",
		Email:   "stored@x.com",
		SavedAt: time.Now(),
	}
	mux := newTestHandler(store, &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/stremio-token", nil)
	req.AddCookie(&http.Cookie{Name: "stremio_authKey", Value: "cookie-key"})
	req.AddCookie(&http.Cookie{Name: "stremio_email", Value: "cookie@x.com"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasToken)
	assert.Equal(t, "cookie-key", resp.AuthKey)
	assert.Equal(t, "cookie@x.com", resp.Email)
	assert.Equal(t, "cookie", resp.Source)
}

func TestTokenFallsBackToStore(t *testing.T) {
	store := newMockSessionStore()
	store.records["stored@x.com"] = model.SessionRecord{
		AuthKey: "stored-key",
		Email:   "stored@x.com",
		SavedAt: time.Now(),
	}
	mux := newTestHandler(store, &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/stremio-token", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasToken)
	assert.Equal(t, "stored-key", resp.AuthKey)
	assert.Equal(t, "store", resp.Source)
}

func TestTokenWithoutSession(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/stremio-token", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.HasToken)
	assert.Empty(t, resp.AuthKey)
}

func TestFindStreamMovie(t *testing.T) {
	source := &mockStreamSource{streams: []model.StreamDescriptor{
		{Name: "Torrentio 1080p", URL: "https://a.example/1"},
		{Name: "VixSrc 1080p", URL: "https://vix.example/1"},
	}}
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, source)

	req := httptest.NewRequest(http.MethodGet, "/api/webstreamr/movie/tt0133093", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StreamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, "https://vix.example/1", resp.URL)
	assert.Equal(t, "VixSrc 1080p", resp.Name)
}

func TestFindStreamSeriesEpisode(t *testing.T) {
	source := &mockStreamSource{streams: []model.StreamDescriptor{
		{Name: "VixSrc", URL: "https://vix.example/ep"},
	}}
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, source)

	req := httptest.NewRequest(http.MethodGet, "/api/webstreamr/series/tt0903747/1/5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StreamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
}

func TestFindStreamNoCandidates(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/webstreamr/movie/tt0000000", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StreamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
}

func TestFindStreamUpstreamFailure(t *testing.T) {
	source := &mockStreamSource{err: errors.New("connection refused")}
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, source)

	req := httptest.NewRequest(http.MethodGet, "/api/webstreamr/movie/tt1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFindStreamInvalidSeason(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/webstreamr/series/tt1/one/5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAddons(t *testing.T) {
	client := &mockStremioClient{addons: []model.Addon{
		{ID: "com.linvo.cinemeta", Name: "Cinemeta", TransportURL: "https://v3-cinemeta.strem.io/manifest.json"},
	}}
	mux := newTestHandler(newMockSessionStore(), client, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/session/addons", nil)
	req.AddCookie(&http.Cookie{Name: "stremio_authKey", Value: "k"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AddonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Cinemeta", resp[0].Name)
}

func TestListAddonsUnauthenticated(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/session/addons", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListLibraryUpstreamFailure(t *testing.T) {
	client := &mockStremioClient{listErr: errors.New("session does not exist")}
	mux := newTestHandler(newMockSessionStore(), client, &mockStreamSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/session/library", nil)
	req.AddCookie(&http.Cookie{Name: "stremio_authKey", Value: "expired"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetadataEndpointsWithoutClient(t *testing.T) {
	mux := newTestHandler(newMockSessionStore(), &mockStremioClient{}, &mockStreamSource{})

	for _, path := range []string{
		"/api/search/movie?query=matrix",
		"/api/external-ids/movie/603",
		"/api/tv/1396/season/1",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}
