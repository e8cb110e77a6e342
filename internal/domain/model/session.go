package model

import "time"

// SessionRecord is the durable unit of Stremio session state. A record always
// carries an AuthKey; Password is present only when the record was created by
// an interactive login, which is what makes transparent refresh possible.
// Records populated purely from cookies lack it, and the cached key is then
// used as-is until the remote side rejects it.
type SessionRecord struct {
	AuthKey  string
	Email    string
	Password string
	UserID   string
	SavedAt  time.Time
}

// CanRefresh reports whether the record carries the credentials needed to
// obtain a replacement authKey.
func (r SessionRecord) CanRefresh() bool {
	return r.Email != "" && r.Password != ""
}

// IdentitySource tags which channel served a resolved identity, so callers
// (and tests) can tell a cookie-backed read from a store-backed one.
type IdentitySource string

const (
	IdentitySourceCookie IdentitySource = "cookie"
	IdentitySourceStore  IdentitySource = "store"
	IdentitySourceNone   IdentitySource = "none"
)

// SessionIdentity is the request-scoped {authKey, email} pair used for a
// single injection or session query. It is derived, never persisted.
type SessionIdentity struct {
	AuthKey string
	Email   string
	Source  IdentitySource
}

// IsAuthenticated reports whether the identity carries a usable authKey.
func (id SessionIdentity) IsAuthenticated() bool {
	return id.AuthKey != ""
}

// User is the opaque user-info object returned by the Stremio API alongside
// a fresh authKey.
type User struct {
	ID    string
	Email string
}

// Addon is one entry of the account's installed addon collection.
type Addon struct {
	TransportURL string
	ID           string
	Name         string
}

// LibraryItem is one entry of the account's datastore library collection.
type LibraryItem struct {
	ID   string
	Name string
	Type string
}
