package ports

import (
	"context"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// SessionStore persists one session descriptor per account into exactly one
// of two storage scopes, selected by the remember-me flag: the durable scope
// survives restarts, the ephemeral scope lives only as long as the process
// (the tab-scoped analog). Records are keyed by user id so a new login
// overwrites the previous session wholesale, whichever scope held it.
type SessionStore interface {
	// Persist clears any descriptor and welcome flag for this user from both
	// scopes, then writes the descriptor to the durable scope when rememberMe
	// is true, otherwise the ephemeral one. Returns domain.ErrNoActiveSession
	// when the descriptor does not identify an authenticated session.
	Persist(ctx context.Context, rememberMe bool, descriptor *domain.SessionDescriptor) error

	// Current returns the user's descriptor from whichever scope holds it,
	// or nil when neither does or when the stored session id differs from
	// sessionID (a token superseded by a later login). Absence is not an
	// error.
	Current(ctx context.Context, userID, sessionID string) (*domain.SessionDescriptor, error)

	// Clear removes the user's descriptor and welcome flag from both scopes.
	// Idempotent.
	Clear(ctx context.Context, userID string) error

	// MarkWelcomeShown records that the one-time welcome modal was shown for
	// this user's session. The flag lives in the ephemeral scope.
	MarkWelcomeShown(ctx context.Context, userID string) error

	// WelcomeShown reports whether the welcome modal was already shown.
	WelcomeShown(ctx context.Context, userID string) (bool, error)
}
