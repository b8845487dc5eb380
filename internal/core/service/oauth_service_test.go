package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

type stubProvider struct {
	name      string
	principal *domain.Principal
	err       error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, _ string) (*domain.Principal, error) {
	return p.principal, p.err
}

func newTestOAuth(repo *stubAccountRepo, provider *stubProvider) *OAuthService {
	return NewOAuthService(repo, "state-secret", zerolog.Nop(), provider)
}

func TestOAuth_BeginUnknownProvider(t *testing.T) {
	svc := newTestOAuth(newStubAccountRepo(), &stubProvider{name: "google"})

	_, err := svc.Begin("facebook")
	var oe *domain.OAuthError
	if !errors.As(err, &oe) || oe.Code != "unknown_provider" {
		t.Fatalf("expected unknown_provider OAuthError, got %v", err)
	}
}

func TestOAuth_CompleteCarriesProviderCode(t *testing.T) {
	svc := newTestOAuth(newStubAccountRepo(), &stubProvider{name: "google"})

	_, err := svc.Complete(context.Background(), "google", "whatever", "", "access_denied")
	var oe *domain.OAuthError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OAuthError, got %v", err)
	}
	if oe.Code != "access_denied" || oe.Provider != "google" {
		t.Fatalf("diagnostic code lost: %+v", oe)
	}
}

func TestOAuth_CompleteRejectsForgedState(t *testing.T) {
	svc := newTestOAuth(newStubAccountRepo(), &stubProvider{name: "google"})

	_, err := svc.Complete(context.Background(), "google", "not-a-signed-state", "code", "")
	var oe *domain.OAuthError
	if !errors.As(err, &oe) || oe.Code != "invalid_state" {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestOAuth_CompleteNoPrincipal(t *testing.T) {
	provider := &stubProvider{name: "google", principal: &domain.Principal{Subject: "sub-1"}}
	svc := newTestOAuth(newStubAccountRepo(), provider)

	state := beginState(t, svc)
	_, err := svc.Complete(context.Background(), "google", state, "code", "")
	if !errors.Is(err, domain.ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestOAuth_CompleteProvisionsVerifiedAccount(t *testing.T) {
	provider := &stubProvider{name: "google", principal: &domain.Principal{
		Subject:  "sub-1",
		Email:    "Oauth.User@Example.com",
		FullName: "OAuth User",
	}}
	repo := newStubAccountRepo()
	svc := newTestOAuth(repo, provider)

	state := beginState(t, svc)
	summary, err := svc.Complete(context.Background(), "google", state, "code", "")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if summary.Email != "oauth.user@example.com" {
		t.Fatalf("email not normalized: %q", summary.Email)
	}
	if !summary.Verified {
		t.Fatalf("provider-backed account must be pre-verified")
	}

	// Second login resolves the same account instead of provisioning again.
	state = beginState(t, svc)
	again, err := svc.Complete(context.Background(), "google", state, "code", "")
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}
	if again.ID != summary.ID || len(repo.accounts) != 1 {
		t.Fatalf("expected one provisioned account, got %d", len(repo.accounts))
	}
}

// beginState runs Begin and extracts the state parameter from the URL.
func beginState(t *testing.T, svc *OAuthService) string {
	t.Helper()
	url, err := svc.Begin("google")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	const marker = "state="
	idx := len(url)
	for i := 0; i+len(marker) <= len(url); i++ {
		if url[i:i+len(marker)] == marker {
			idx = i + len(marker)
			break
		}
	}
	if idx == len(url) {
		t.Fatalf("no state in %q", url)
	}
	return url[idx:]
}
