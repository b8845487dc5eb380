package ports

import (
	"context"
	"time"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// AccountRepository is the persistence contract consumed from the identity
// backend. Implementations translate driver-level failures into domain
// errors; anything unmapped is wrapped in domain.ErrBackendUnavailable.
type AccountRepository interface {
	// FindByEmail looks up an account by normalized email.
	// Returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Create inserts a new account. Returns domain.ErrDuplicateAccount when
	// an account with the same normalized email already exists.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// SetResetToken stores a reset token and its expiry against the account,
	// overwriting any prior unredeemed token.
	SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error

	// FindByResetToken returns the account currently holding token, or
	// domain.ErrInvalidToken when no account does.
	FindByResetToken(ctx context.Context, token string) (*domain.Account, error)

	// ConsumeResetToken atomically replaces the password hash and clears the
	// reset token and expiry, guarded on the token still being held and
	// unexpired at notAfter. Returns domain.ErrInvalidToken when the guard
	// does not match.
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string, notAfter time.Time) error

	// ConsumeVerificationToken atomically flips the verified flag and clears
	// the verification token. At-most-once: a concurrent second redemption of
	// the same token gets domain.ErrInvalidToken.
	ConsumeVerificationToken(ctx context.Context, token string) (*domain.Account, error)
}
