package domain

import "time"

// TokenKind selects the notification template used when a token is delivered.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// ResetTokenTTL is how long a password-reset token stays redeemable.
const ResetTokenTTL = time.Hour

// Account models a registered principal as stored by the identity backend.
//
// VerificationToken and ResetToken are single-use: each is cleared atomically
// with the state change it authorizes (verified flag flip / password update),
// and neither is ever usable for the other workflow.
type Account struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	FullName          string     `json:"full_name"`
	Verified          bool       `json:"verified"`
	VerificationToken string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetExpiresAt    *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Summary returns the externally visible projection of the account.
// Password hashes and live tokens never leave the service boundary.
func (a *Account) Summary() *AccountSummary {
	if a == nil {
		return nil
	}
	return &AccountSummary{
		ID:       a.ID,
		Email:    a.Email,
		FullName: a.FullName,
		Verified: a.Verified,
	}
}

// AccountSummary is the caller-facing view of an account.
type AccountSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Verified bool   `json:"verified"`
}

// SessionDescriptor is the minimal record identifying an authenticated
// principal, persisted client-side (one storage scope at a time) for
// continuity across page loads.
type SessionDescriptor struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the identity returned by an external OAuth provider after a
// successful redirect flow.
type Principal struct {
	Subject  string
	Email    string
	FullName string
}
