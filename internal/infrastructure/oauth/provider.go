// Package oauth implements the ports.OAuthProvider contract over a generic
// authorization-code provider: redirect to the authorize endpoint, exchange
// the code at the token endpoint, then fetch the principal from the userinfo
// endpoint.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// Config describes one provider's endpoints and client credentials.
type Config struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// Provider drives the authorization-code exchange for a single provider.
type Provider struct {
	cfg    Config
	client *http.Client
}

func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (p *Provider) Name() string { return p.cfg.Name }

// AuthCodeURL builds the provider redirect URL for the given opaque state.
func (p *Provider) AuthCodeURL(state string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {p.cfg.ClientID},
		"redirect_uri":  {p.cfg.RedirectURL},
		"state":         {state},
	}
	if len(p.cfg.Scopes) > 0 {
		q.Set("scope", strings.Join(p.cfg.Scopes, " "))
	}
	return p.cfg.AuthURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userInfoResponse struct {
	Subject string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Exchange trades the authorization code for an access token and fetches the
// principal. Provider-reported failures come back as domain.OAuthError with
// the provider's own diagnostic code.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.Principal, error) {
	token, err := p.requestToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return p.fetchPrincipal(ctx, token)
}

func (p *Provider) requestToken(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"redirect_uri":  {p.cfg.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &domain.OAuthError{Provider: p.cfg.Name, Code: "token_endpoint_unreachable"}
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return "", &domain.OAuthError{Provider: p.cfg.Name, Code: "malformed_token_response"}
	}
	if tr.Error != "" {
		return "", &domain.OAuthError{Provider: p.cfg.Name, Code: tr.Error}
	}
	if resp.StatusCode != http.StatusOK || tr.AccessToken == "" {
		return "", &domain.OAuthError{Provider: p.cfg.Name, Code: fmt.Sprintf("token_status_%d", resp.StatusCode)}
	}
	return tr.AccessToken, nil
}

func (p *Provider) fetchPrincipal(ctx context.Context, accessToken string) (*domain.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.OAuthError{Provider: p.cfg.Name, Code: "userinfo_unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.OAuthError{Provider: p.cfg.Name, Code: fmt.Sprintf("userinfo_status_%d", resp.StatusCode)}
	}

	var ui userInfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ui); err != nil {
		return nil, &domain.OAuthError{Provider: p.cfg.Name, Code: "malformed_userinfo"}
	}

	subject := ui.Subject
	if subject == "" {
		subject = ui.ID
	}
	// Missing email means the provider step "succeeded" without a usable
	// principal; the service maps this to ErrNoPrincipal.
	if ui.Email == "" {
		return &domain.Principal{Subject: subject, FullName: ui.Name}, nil
	}
	return &domain.Principal{Subject: subject, Email: ui.Email, FullName: ui.Name}, nil
}
