package driven

import (
	"context"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// AuthResult is the outcome of a successful authentication call: a fresh
// bearer authKey plus the account's user-info object.
type AuthResult struct {
	AuthKey string
	User    model.User
}

// StremioClient defines the driven port for the Stremio session API.
// All operations are idempotent at the protocol level; the adapter issues
// each at most once per invocation, and retry policy belongs to the caller.
// Transport failures and in-band application errors are both normalized to
// a single error naming the cause.
type StremioClient interface {
	// Authenticate exchanges email/password for a fresh authKey.
	Authenticate(ctx context.Context, email, password string) (AuthResult, error)

	// GetUser fetches the profile associated with the authKey.
	GetUser(ctx context.Context, authKey string) (model.User, error)

	// ListAddons fetches the account's installed addon collection.
	// An absent result field yields an empty slice, not an error.
	ListAddons(ctx context.Context, authKey string) ([]model.Addon, error)

	// ListLibrary fetches datastore items for the given collection
	// (e.g. "libraryItem"). An absent result yields an empty slice.
	ListLibrary(ctx context.Context, authKey, collection string) ([]model.LibraryItem, error)
}
