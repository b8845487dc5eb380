package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
)

// OAuthHandler drives the provider redirect flow.
type OAuthHandler struct {
	oauth      ports.OAuthService
	sessions   ports.SessionStore
	jwtSecret  string
	sessionTTL time.Duration
	log        zerolog.Logger
}

func NewOAuthHandler(oauth ports.OAuthService, sessions ports.SessionStore, jwtSecret string, sessionTTL time.Duration, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauth:      oauth,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Begin redirects the user agent to the external identity provider.
//
// @Summary      Start an OAuth login
// @Tags         auth
// @Param        provider  path  string  true  "Provider name (e.g. google)"
// @Success      302
// @Failure      400  {object}  errorResponse
// @Router       /auth/oauth/{provider} [get]
func (h *OAuthHandler) Begin(c echo.Context) error {
	redirectURL, err := h.oauth.Begin(c.Param("provider"))
	if err != nil {
		var oe *domain.OAuthError
		if errors.As(err, &oe) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: oe.Error()})
		}
		return err
	}
	return c.Redirect(http.StatusFound, redirectURL)
}

// Callback completes the OAuth flow and establishes a session. OAuth sessions
// use the ephemeral scope; the dashboard offers remember-me only for password
// logins.
//
// @Summary      OAuth provider callback
// @Tags         auth
// @Produce      json
// @Param        provider  path   string  true   "Provider name"
// @Param        state     query  string  true   "Opaque state from Begin"
// @Param        code      query  string  false  "Authorization code"
// @Param        error     query  string  false  "Provider error code"
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	provider := c.Param("provider")
	summary, err := h.oauth.Complete(
		c.Request().Context(),
		provider,
		c.QueryParam("state"),
		c.QueryParam("code"),
		c.QueryParam("error"),
	)
	if err != nil {
		var oe *domain.OAuthError
		switch {
		case errors.As(err, &oe):
			metrics.LoginsTotal.WithLabelValues("oauth", "error").Inc()
			h.log.Warn().Str("provider", provider).Str("code", oe.Code).Msg("oauth step failed")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: oe.Error()})
		case errors.Is(err, domain.ErrNoPrincipal):
			metrics.LoginsTotal.WithLabelValues("oauth", "error").Inc()
			return c.JSON(http.StatusBadGateway, errorResponse{Error: "provider returned no principal"})
		default:
			return err
		}
	}

	token, err := establishSession(c, h.sessions, summary, false, h.jwtSecret, h.sessionTTL)
	if err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("oauth", "success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  toAccountResponse(summary),
	})
}
