// Package application holds the use-case services between the driving and
// driven adapters.
package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// CookieCredentials carries the per-client ephemeral channel values as
// extracted from request cookies by the driving adapter. The channel holds
// an unkeyed copy of {authKey, email, password} with no linkage back to the
// durable record.
type CookieCredentials struct {
	AuthKey  string
	Email    string
	Password string
}

// HasAuthKey reports whether the ephemeral channel carries a usable key.
func (c CookieCredentials) HasAuthKey() bool {
	return c.AuthKey != ""
}

// RefreshStatus describes what the refresh policy did for one request.
type RefreshStatus string

const (
	// RefreshSkipped: no refresh was attempted (cookie identity, empty
	// store, or a record without cached credentials).
	RefreshSkipped RefreshStatus = "skipped"
	// Refreshed: a new authKey was obtained and merged into the record.
	Refreshed RefreshStatus = "refreshed"
	// RefreshKeptStale: re-authentication failed and the cached key is
	// being used as-is. Cause carries the failure.
	RefreshKeptStale RefreshStatus = "kept_stale"
)

// RefreshOutcome reports the refresh decision alongside a resolved identity.
// Cause is non-nil only for RefreshKeptStale; callers are expected to log it.
type RefreshOutcome struct {
	Status RefreshStatus
	Cause  error
}

// LoginResult is the outcome of an interactive login. PersistErr is non-nil
// when the durable write failed; the record is still valid in memory and the
// caller decides whether to proceed with it.
type LoginResult struct {
	Record     model.SessionRecord
	PersistErr error
}

// SessionService owns the credential read-with-precedence resolution and the
// best-effort token refresh policy.
type SessionService struct {
	store  driven.SessionStore
	client driven.StremioClient
	logger *slog.Logger
	now    func() time.Time

	// Serializes durable writes per account so two concurrent refreshes
	// for the same record cannot interleave.
	locks keyedMutex
}

// NewSessionService creates a SessionService.
func NewSessionService(store driven.SessionStore, client driven.StremioClient, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the session identity for a request. The cookie channel is
// the caller's own most recent state and is authoritative: when it carries an
// authKey the durable store is not consulted at all. Only an empty cookie
// channel falls back to the durable record. Store read failures (including
// malformed rows) degrade to an unauthenticated identity rather than failing
// the request.
func (s *SessionService) Resolve(ctx context.Context, cookies CookieCredentials) model.SessionIdentity {
	if cookies.HasAuthKey() {
		return model.SessionIdentity{
			AuthKey: cookies.AuthKey,
			Email:   cookies.Email,
			Source:  model.IdentitySourceCookie,
		}
	}

	record, err := s.store.Latest(ctx)
	if err != nil {
		s.logger.Warn("session store read failed, proceeding unauthenticated", "error", err)
		return model.SessionIdentity{Source: model.IdentitySourceNone}
	}
	if record == nil {
		return model.SessionIdentity{Source: model.IdentitySourceNone}
	}

	return model.SessionIdentity{
		AuthKey: record.AuthKey,
		Email:   record.Email,
		Source:  model.IdentitySourceStore,
	}
}

// RefreshIdentity resolves an identity, proactively replacing a possibly-stale
// durable authKey when the record carries cached credentials. Refresh is
// best-effort: an authentication failure keeps the stale key and is reported
// in the outcome, never propagated. A cookie-backed identity is returned
// unmodified; refreshing the caller's own fresh state would be pointless.
func (s *SessionService) RefreshIdentity(ctx context.Context, cookies CookieCredentials) (model.SessionIdentity, RefreshOutcome) {
	if cookies.HasAuthKey() {
		return model.SessionIdentity{
			AuthKey: cookies.AuthKey,
			Email:   cookies.Email,
			Source:  model.IdentitySourceCookie,
		}, RefreshOutcome{Status: RefreshSkipped}
	}

	record, err := s.store.Latest(ctx)
	if err != nil {
		s.logger.Warn("session store read failed, proceeding unauthenticated", "error", err)
		return model.SessionIdentity{Source: model.IdentitySourceNone}, RefreshOutcome{Status: RefreshSkipped}
	}
	if record == nil {
		return model.SessionIdentity{Source: model.IdentitySourceNone}, RefreshOutcome{Status: RefreshSkipped}
	}

	stale := model.SessionIdentity{
		AuthKey: record.AuthKey,
		Email:   record.Email,
		Source:  model.IdentitySourceStore,
	}

	if !record.CanRefresh() {
		return stale, RefreshOutcome{Status: RefreshSkipped}
	}

	unlock := s.locks.lock(record.Email)
	defer unlock()

	auth, err := s.client.Authenticate(ctx, record.Email, record.Password)
	if err != nil {
		// Stale token stays usable until the remote side rejects it.
		return stale, RefreshOutcome{Status: RefreshKeptStale, Cause: err}
	}

	refreshed := *record
	refreshed.AuthKey = auth.AuthKey
	if auth.User.ID != "" {
		refreshed.UserID = auth.User.ID
	}
	refreshed.SavedAt = s.now()

	if err := s.store.Put(ctx, refreshed); err != nil {
		// The refreshed key is still valid in memory for this request.
		s.logger.Error("failed to persist refreshed session", "email", record.Email, "error", err)
	}

	return model.SessionIdentity{
		AuthKey: refreshed.AuthKey,
		Email:   refreshed.Email,
		Source:  model.IdentitySourceStore,
	}, RefreshOutcome{Status: Refreshed}
}

// Login authenticates with the given credentials and persists a full session
// record, password included, so later refreshes can run without user input.
// An authentication failure is returned as err; a persistence failure is
// surfaced separately in the result, with the in-memory record still usable.
func (s *SessionService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	auth, err := s.client.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	recordEmail := auth.User.Email
	if recordEmail == "" {
		recordEmail = email
	}

	record := model.SessionRecord{
		AuthKey:  auth.AuthKey,
		Email:    recordEmail,
		Password: password,
		UserID:   auth.User.ID,
		SavedAt:  s.now(),
	}

	unlock := s.locks.lock(record.Email)
	defer unlock()

	result := LoginResult{Record: record}
	if err := s.store.Put(ctx, record); err != nil {
		result.PersistErr = err
	}
	return result, nil
}

// keyedMutex hands out one mutex per key, lazily.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
