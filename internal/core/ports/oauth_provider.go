package ports

import (
	"context"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// OAuthProvider is one configured external identity provider.
type OAuthProvider interface {
	// Name is the provider key used in routes and state claims (e.g. "google").
	Name() string

	// AuthCodeURL builds the provider redirect URL for the given opaque state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the authenticated principal.
	Exchange(ctx context.Context, code string) (*domain.Principal, error)
}

// OAuthService drives the redirect flow: Begin issues the redirect URL,
// Complete consumes the provider callback and yields the account.
type OAuthService interface {
	Begin(provider string) (string, error)
	Complete(ctx context.Context, provider, state, code, providerErr string) (*domain.AccountSummary, error)
}
