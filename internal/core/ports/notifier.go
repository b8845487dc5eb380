package ports

import (
	"context"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// Notifier delivers a single-use token to an account holder. The kind selects
// the template; delivery failures are returned to the caller, who decides
// whether they are fatal (sign-up) or best-effort (password reset).
type Notifier interface {
	Send(ctx context.Context, toEmail, recipientName, token string, kind domain.TokenKind) error
}
