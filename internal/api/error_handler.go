package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Client-side validation failures that slipped past the schema layer.
	if domain.IsValidation(err) {
		return http.StatusBadRequest, err.Error()
	}

	var oe *domain.OAuthError
	if errors.As(err, &oe) {
		return http.StatusUnauthorized, oe.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrEmailUnverified):
		return http.StatusForbidden, "email not verified"
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusConflict, "account already exists"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusGone, "token expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, domain.ErrNoPrincipal):
		return http.StatusBadGateway, "provider returned no principal"
	case errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusUnauthorized, "no active session"
	case errors.Is(err, domain.ErrBackendUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("identity backend failure")
		return http.StatusServiceUnavailable, "identity backend unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
