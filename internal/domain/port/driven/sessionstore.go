package driven

import (
	"context"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// SessionStore defines the driven port for durable session persistence.
// Records are keyed by account email even though a single account is the
// norm today, so multi-account use does not require a schema change.
// Records are read and written whole; there are no partial updates.
type SessionStore interface {
	// Put stores or replaces the record for record.Email.
	Put(ctx context.Context, record model.SessionRecord) error

	// Get retrieves the record for the given email.
	// Returns (nil, nil) if no record exists.
	Get(ctx context.Context, email string) (*model.SessionRecord, error)

	// Latest retrieves the most recently saved record across all accounts.
	// Returns (nil, nil) if the store is empty.
	Latest(ctx context.Context) (*model.SessionRecord, error)

	// Delete removes the record for the given email.
	Delete(ctx context.Context, email string) error
}
