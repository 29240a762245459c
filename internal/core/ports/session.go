package ports

import (
	"context"

	"github.com/printwatch/fleet-console/internal/core/domain"
)

// TokenRepository persists each browser session's bearer token under its
// session ID so a login survives console restarts. Single writer: only the
// session store touches it.
type TokenRepository interface {
	// Save stores the token for the session, replacing any previous value.
	Save(ctx context.Context, sessionID, token string) error
	// Find returns the stored token, or "" when none exists.
	Find(ctx context.Context, sessionID string) (string, error)
	// Delete removes the stored token. Deleting a missing token is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// SessionStore is the single source of truth for "who is logged in" and
// "is the auth check finished", per browser session.
type SessionStore interface {
	// Login stores the token and kicks off identity resolution. It returns
	// before resolution completes; resolution failures surface only as the
	// session ending up unauthenticated.
	Login(ctx context.Context, sessionID, token string)
	// Logout clears token and identity and marks the session ready.
	Logout(ctx context.Context, sessionID string)
	// Get returns a snapshot of the session, adopting a persisted token
	// (and starting resolution) when the session is not yet in memory.
	Get(ctx context.Context, sessionID string) domain.Session
}
