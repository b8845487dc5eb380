package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
)

const minBcryptCost = 12

// CredentialService implements sign-up, login and the token workflows over
// the identity backend. It is stateless; tokens live on the account record.
type CredentialService struct {
	repo       ports.AccountRepository
	bcryptCost int
	log        zerolog.Logger
	now        func() time.Time
}

func NewCredentialService(repo ports.AccountRepository, bcryptCost int, log zerolog.Logger) *CredentialService {
	if bcryptCost < minBcryptCost {
		bcryptCost = minBcryptCost
	}
	return &CredentialService{
		repo:       repo,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// CreateAccount validates input, hashes the password and inserts the account
// unverified, returning the single-use verification token for the caller to
// deliver. Validation failures never reach the backend.
func (s *CredentialService) CreateAccount(ctx context.Context, email, password, fullName string) (*ports.CreatedAccount, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := domain.ValidateFullName(fullName); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Email:             domain.NormalizeEmail(email),
		PasswordHash:      string(hash),
		FullName:          fullName,
		Verified:          false,
		VerificationToken: uuid.NewString(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.ID).Msg("account created")
	return &ports.CreatedAccount{
		Account:           created.Summary(),
		VerificationToken: account.VerificationToken,
	}, nil
}

// Authenticate checks the credentials against the backend. A missing account
// and a wrong password yield the same domain.ErrInvalidCredentials so callers
// cannot enumerate accounts. The verification check runs only after the
// password has matched; an unauthenticated caller never learns whether an
// address is verified.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*domain.AccountSummary, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !account.Verified {
		return nil, domain.ErrEmailUnverified
	}

	return account.Summary(), nil
}

// RequestPasswordReset issues a fresh single-use reset token valid for one
// hour, overwriting any prior unredeemed token. Returns
// domain.ErrAccountNotFound when no account matches; the transport layer
// decides whether to surface or mask that (see DESIGN.md).
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) (*ports.PasswordResetRequest, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	expiresAt := s.now().UTC().Add(domain.ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, account.ID, token, expiresAt); err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Time("expires_at", expiresAt).Msg("password reset token issued")
	return &ports.PasswordResetRequest{
		Email:    account.Email,
		FullName: account.FullName,
		Token:    token,
	}, nil
}

// VerifyEmail redeems a verification token at most once. The lookup and the
// clear happen in a single backend update, so a concurrent second redemption
// of the same token fails with domain.ErrInvalidToken.
func (s *CredentialService) VerifyEmail(ctx context.Context, token string) (*domain.AccountSummary, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	account, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("email verified")
	return account.Summary(), nil
}

// ResetPassword redeems a reset token for a password change. Expiry is
// checked before consuming so an expired token leaves the stored hash
// untouched; the hash update and the token clear are one atomic backend
// operation.
func (s *CredentialService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrInvalidToken
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}

	// A token is live only strictly before its expiry, matching the
	// backend's consume filter: at the exact expiry instant both sides
	// treat it as expired.
	now := s.now().UTC()
	if account.ResetExpiresAt == nil || !now.Before(*account.ResetExpiresAt) {
		return domain.ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.ConsumeResetToken(ctx, token, string(hash), now); err != nil {
		return err
	}

	s.log.Info().Str("account_id", account.ID).Msg("password reset completed")
	return nil
}
