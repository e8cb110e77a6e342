package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
// One row per account email; rows are replaced whole so a failed refresh can
// never leave a partially written record behind.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Put stores or replaces the session record for record.Email.
func (r *SessionRepo) Put(ctx context.Context, record model.SessionRecord) error {
	if record.Email == "" {
		return errors.New("put session: email is required")
	}
	if record.AuthKey == "" {
		return errors.New("put session: authKey is required")
	}

	const query = `INSERT OR REPLACE INTO sessions (email, auth_key, password, user_id, saved_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query,
		record.Email,
		record.AuthKey,
		record.Password,
		record.UserID,
		record.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put session %q: %w", record.Email, err)
	}
	return nil
}

// Get retrieves the session record for the given email.
// Returns (nil, nil) if no record exists for that email.
func (r *SessionRepo) Get(ctx context.Context, email string) (*model.SessionRecord, error) {
	const query = `SELECT email, auth_key, password, user_id, saved_at FROM sessions WHERE email = ?`
	return r.scanOne(r.db.Reader.QueryRowContext(ctx, query, email))
}

// Latest retrieves the most recently saved session record across all accounts.
// Returns (nil, nil) if the store is empty.
func (r *SessionRepo) Latest(ctx context.Context) (*model.SessionRecord, error) {
	const query = `SELECT email, auth_key, password, user_id, saved_at FROM sessions ORDER BY saved_at DESC LIMIT 1`
	return r.scanOne(r.db.Reader.QueryRowContext(ctx, query))
}

// Delete removes the session record for the given email.
func (r *SessionRepo) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM sessions WHERE email = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("delete session %q: %w", email, err)
	}
	return nil
}

func (r *SessionRepo) scanOne(row *sql.Row) (*model.SessionRecord, error) {
	var record model.SessionRecord
	var savedAt string

	err := row.Scan(&record.Email, &record.AuthKey, &record.Password, &record.UserID, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	record.SavedAt, err = parseTime(savedAt)
	if err != nil {
		return nil, fmt.Errorf("parse saved_at for session %q: %w", record.Email, err)
	}

	return &record, nil
}
