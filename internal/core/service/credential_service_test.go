package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// stubAccountRepo is an in-memory AccountRepository that counts calls so
// tests can assert that validation failures never reach the backend.
type stubAccountRepo struct {
	accounts map[string]*domain.Account // keyed by normalized email
	calls    int
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.ResetExpiresAt != nil {
		t := *a.ResetExpiresAt
		clone.ResetExpiresAt = &t
	}
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.calls++
	if acc, ok := r.accounts[email]; ok {
		return cloneAccount(acc), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.calls++
	if _, exists := r.accounts[account.Email]; exists {
		return nil, domain.ErrDuplicateAccount
	}
	copy := cloneAccount(account)
	r.nextID++
	copy.ID = string(rune('a' + r.nextID))
	r.accounts[copy.Email] = copy
	return cloneAccount(copy), nil
}

func (r *stubAccountRepo) SetResetToken(_ context.Context, accountID, token string, expiresAt time.Time) error {
	r.calls++
	for _, acc := range r.accounts {
		if acc.ID == accountID {
			acc.ResetToken = token
			acc.ResetExpiresAt = &expiresAt
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByResetToken(_ context.Context, token string) (*domain.Account, error) {
	r.calls++
	for _, acc := range r.accounts {
		if acc.ResetToken != "" && acc.ResetToken == token {
			return cloneAccount(acc), nil
		}
	}
	return nil, domain.ErrInvalidToken
}

func (r *stubAccountRepo) ConsumeResetToken(_ context.Context, token, newPasswordHash string, notAfter time.Time) error {
	r.calls++
	for _, acc := range r.accounts {
		if acc.ResetToken == token && token != "" && acc.ResetExpiresAt != nil && notAfter.Before(*acc.ResetExpiresAt) {
			acc.PasswordHash = newPasswordHash
			acc.ResetToken = ""
			acc.ResetExpiresAt = nil
			return nil
		}
	}
	return domain.ErrInvalidToken
}

func (r *stubAccountRepo) ConsumeVerificationToken(_ context.Context, token string) (*domain.Account, error) {
	r.calls++
	for _, acc := range r.accounts {
		if acc.VerificationToken != "" && acc.VerificationToken == token {
			acc.Verified = true
			acc.VerificationToken = ""
			return cloneAccount(acc), nil
		}
	}
	return nil, domain.ErrInvalidToken
}

func newTestService(repo *stubAccountRepo) *CredentialService {
	return NewCredentialService(repo, bcrypt.MinCost, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *CredentialService, email, password, name string) string {
	t.Helper()
	created, err := svc.CreateAccount(context.Background(), email, password, name)
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return created.VerificationToken
}

func TestCreateAccount_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	created, err := svc.CreateAccount(context.Background(), " Alice@Example.COM ", "Strong1!", "Alice Smith")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if created.Account.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", created.Account.Email)
	}
	if created.Account.Verified {
		t.Fatalf("new account must start unverified")
	}
	if created.VerificationToken == "" {
		t.Fatalf("expected verification token for caller to deliver")
	}

	stored := repo.accounts["alice@example.com"]
	if stored.PasswordHash == "Strong1!" || stored.PasswordHash == "" {
		t.Fatalf("password not hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Strong1!")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestCreateAccount_ValidationNeverReachesBackend(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	cases := []struct{ email, password, name string }{
		{"not-an-email", "Strong1!", "Alice Smith"},
		{"a@b", "Strong1!", "Alice Smith"},
		{"a@b.com", "Weak1!", "Alice Smith"},     // 6 chars, fails length
		{"a@b.com", "alllower1!", "Alice Smith"}, // no uppercase
		{"a@b.com", "Strong1!", " X "},
	}
	for _, tc := range cases {
		_, err := svc.CreateAccount(context.Background(), tc.email, tc.password, tc.name)
		if !domain.IsValidation(err) {
			t.Fatalf("expected ValidationError for %+v, got %v", tc, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("validation failures must not hit the backend, saw %d calls", repo.calls)
	}
}

func TestCreateAccount_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "bob@example.com", "Strong1!", "Bob Jones")
	// Same address in different case and with whitespace: still a duplicate.
	_, err := svc.CreateAccount(context.Background(), " BOB@Example.com", "Strong1!", "Bob Jones")
	if !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("second record must not be created, have %d", len(repo.accounts))
	}
}

func TestAuthenticate_UniformErrorForMissingAndWrong(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	token := mustCreate(t, svc, "carol@example.com", "Strong1!", "Carol Diaz")
	if _, err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "Strong1!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("missing account: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "carol@example.com", "Wrong1!aa"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnverifiedOnlyAfterPasswordMatch(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "dave@example.com", "Strong1!", "Dave Lee")

	// Correct password on an unverified account: EmailUnverified, never
	// InvalidCredentials.
	if _, err := svc.Authenticate(context.Background(), "dave@example.com", "Strong1!"); !errors.Is(err, domain.ErrEmailUnverified) {
		t.Fatalf("expected ErrEmailUnverified, got %v", err)
	}

	// Wrong password on the same unverified account must not reveal the
	// verification state.
	if _, err := svc.Authenticate(context.Background(), "dave@example.com", "Wrong1!aa"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_Verified(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	token := mustCreate(t, svc, "erin@example.com", "Strong1!", "Erin Wu")
	if _, err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	summary, err := svc.Authenticate(context.Background(), "Erin@Example.com", "Strong1!")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if summary.Email != "erin@example.com" || !summary.Verified {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	token := mustCreate(t, svc, "frank@example.com", "Strong1!", "Frank Moss")

	if _, err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := svc.VerifyEmail(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("second redemption: expected ErrInvalidToken, got %v", err)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	if _, err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	mustCreate(t, svc, "gina@example.com", "Strong1!", "Gina Park")

	first, err := svc.RequestPasswordReset(context.Background(), "gina@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if first.Token == "" || first.Email != "gina@example.com" {
		t.Fatalf("unexpected request: %+v", first)
	}

	// A second request overwrites the prior unredeemed token.
	second, err := svc.RequestPasswordReset(context.Background(), "gina@example.com")
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if repo.accounts["gina@example.com"].ResetToken != second.Token {
		t.Fatalf("stored token not overwritten")
	}
	if err := svc.ResetPassword(context.Background(), first.Token, "Fresh1!aa"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("overwritten token must be dead, got %v", err)
	}
}

func TestResetPassword_HappyPath(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	token := mustCreate(t, svc, "hana@example.com", "Strong1!", "Hana Sato")
	if _, err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	req, err := svc.RequestPasswordReset(context.Background(), "hana@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if err := svc.ResetPassword(context.Background(), req.Token, "Fresh1!aa"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	stored := repo.accounts["hana@example.com"]
	if stored.ResetToken != "" || stored.ResetExpiresAt != nil {
		t.Fatalf("reset token not cleared on redemption")
	}
	if _, err := svc.Authenticate(context.Background(), "hana@example.com", "Fresh1!aa"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "hana@example.com", "Strong1!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}

	// Token is single-use.
	if err := svc.ResetPassword(context.Background(), req.Token, "Again1!aa"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestResetPassword_ExpiredLeavesHashUntouched(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "ivan@example.com", "Strong1!", "Ivan Petrov")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	req, err := svc.RequestPasswordReset(context.Background(), "ivan@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	hashBefore := repo.accounts["ivan@example.com"].PasswordHash

	// Advance past the one-hour expiry.
	svc.now = func() time.Time { return base.Add(domain.ResetTokenTTL + time.Minute) }

	if err := svc.ResetPassword(context.Background(), req.Token, "Fresh1!aa"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if repo.accounts["ivan@example.com"].PasswordHash != hashBefore {
		t.Fatalf("expired reset must not alter the stored hash")
	}
}

func TestResetPassword_ExpiryInstantIsExpired(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	mustCreate(t, svc, "ivan@example.com", "Strong1!", "Ivan Petrov")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	req, err := svc.RequestPasswordReset(context.Background(), "ivan@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	hashBefore := repo.accounts["ivan@example.com"].PasswordHash

	// Exactly at the expiry instant the token is already dead.
	svc.now = func() time.Time { return base.Add(domain.ResetTokenTTL) }

	if err := svc.ResetPassword(context.Background(), req.Token, "Fresh1!aa"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at the expiry instant, got %v", err)
	}
	if repo.accounts["ivan@example.com"].PasswordHash != hashBefore {
		t.Fatalf("reset at the expiry instant must not alter the stored hash")
	}
}

func TestResetPassword_WeakPasswordRejectedBeforeBackend(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo)

	callsBefore := repo.calls
	err := svc.ResetPassword(context.Background(), "some-token", "weak")
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.calls != callsBefore {
		t.Fatalf("weak password must be rejected before any backend call")
	}
}
