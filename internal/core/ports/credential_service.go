package ports

import (
	"context"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// CreatedAccount is the result of a successful sign-up. The verification
// token is returned to the caller so it can trigger the notification send;
// the service itself never emails anyone.
type CreatedAccount struct {
	Account           *domain.AccountSummary
	VerificationToken string
}

// CredentialService translates user-entered credentials into identity-backend
// calls. It owns no state; every operation is a single fire-once backend
// round trip.
type CredentialService interface {
	CreateAccount(ctx context.Context, email, password, fullName string) (*CreatedAccount, error)
	Authenticate(ctx context.Context, email, password string) (*domain.AccountSummary, error)
	RequestPasswordReset(ctx context.Context, email string) (*PasswordResetRequest, error)
	VerifyEmail(ctx context.Context, token string) (*domain.AccountSummary, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// PasswordResetRequest carries the issued reset token and enough recipient
// detail for the caller to dispatch the notification.
type PasswordResetRequest struct {
	Email    string
	FullName string
	Token    string
}
