package handler

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
)

// establishSession persists a fresh descriptor in the scope selected by
// rememberMe and signs the bearer token carrying the session id. Persistence
// follows successful authentication; it never precedes it.
func establishSession(
	c echo.Context,
	sessions ports.SessionStore,
	summary *domain.AccountSummary,
	rememberMe bool,
	jwtSecret string,
	sessionTTL time.Duration,
) (string, error) {
	now := time.Now().UTC()
	descriptor := &domain.SessionDescriptor{
		SessionID: uuid.NewString(),
		UserID:    summary.ID,
		Email:     summary.Email,
		FullName:  summary.FullName,
		CreatedAt: now,
	}

	if err := sessions.Persist(c.Request().Context(), rememberMe, descriptor); err != nil {
		return "", err
	}
	scope := "ephemeral"
	if rememberMe {
		scope = "durable"
	}
	metrics.SessionsPersistedTotal.WithLabelValues(scope).Inc()

	claims := jwt.MapClaims{
		"sid":   descriptor.SessionID,
		"uid":   summary.ID,
		"email": summary.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
}
