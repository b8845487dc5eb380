package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
)

const stateTTL = 10 * time.Minute

// OAuthService runs the provider redirect flow: Begin hands out the provider
// URL with a signed state, Complete consumes the callback, fetches the
// principal and provisions or resolves the local account.
type OAuthService struct {
	providers   map[string]ports.OAuthProvider
	repo        ports.AccountRepository
	stateSecret string
	log         zerolog.Logger
	now         func() time.Time
}

func NewOAuthService(repo ports.AccountRepository, stateSecret string, log zerolog.Logger, providers ...ports.OAuthProvider) *OAuthService {
	byName := make(map[string]ports.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthService{
		providers:   byName,
		repo:        repo,
		stateSecret: stateSecret,
		log:         log,
		now:         time.Now,
	}
}

// Begin returns the provider redirect URL carrying a short-lived signed state.
func (s *OAuthService) Begin(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", &domain.OAuthError{Provider: provider, Code: "unknown_provider"}
	}

	state, err := s.signState(provider)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return p.AuthCodeURL(state), nil
}

// Complete consumes the provider callback. A provider-reported error or a bad
// state yields an OAuthError carrying the diagnostic code; a successful
// exchange that produces no usable principal yields domain.ErrNoPrincipal.
// First-time principals are provisioned as pre-verified accounts, since
// identity proof was delegated to the provider.
func (s *OAuthService) Complete(ctx context.Context, provider, state, code, providerErr string) (*domain.AccountSummary, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, &domain.OAuthError{Provider: provider, Code: "unknown_provider"}
	}
	if providerErr != "" {
		return nil, &domain.OAuthError{Provider: provider, Code: providerErr}
	}
	if err := s.checkState(provider, state); err != nil {
		return nil, &domain.OAuthError{Provider: provider, Code: "invalid_state"}
	}

	principal, err := p.Exchange(ctx, code)
	if err != nil {
		var oe *domain.OAuthError
		if errors.As(err, &oe) {
			return nil, err
		}
		return nil, &domain.OAuthError{Provider: provider, Code: "exchange_failed"}
	}
	if principal == nil || principal.Email == "" {
		return nil, domain.ErrNoPrincipal
	}

	account, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(principal.Email))
	if errors.Is(err, domain.ErrAccountNotFound) {
		account, err = s.provision(ctx, principal)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("provider", provider).Str("account_id", account.ID).Msg("oauth login")
	return account.Summary(), nil
}

func (s *OAuthService) provision(ctx context.Context, principal *domain.Principal) (*domain.Account, error) {
	now := s.now().UTC()
	fullName := principal.FullName
	if fullName == "" {
		fullName = principal.Email
	}
	return s.repo.Create(ctx, &domain.Account{
		Email:     domain.NormalizeEmail(principal.Email),
		FullName:  fullName,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *OAuthService) signState(provider string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"provider": provider,
		"nonce":    uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(stateTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.stateSecret))
}

func (s *OAuthService) checkState(provider, state string) error {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.stateSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !tkn.Valid {
		return domain.ErrInvalidToken
	}
	if claims["provider"] != provider {
		return domain.ErrInvalidToken
	}
	return nil
}
