package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
	"github.com/memberdesk/accounts-api/internal/core/domain"
	"github.com/memberdesk/accounts-api/internal/core/ports"
	"github.com/memberdesk/accounts-api/internal/infrastructure/queue"
)

// notificationDispatcher abstracts the async delivery queue so handler tests
// can record enqueues without running workers.
type notificationDispatcher interface {
	Enqueue(n queue.Notification)
}

// resetThrottle limits how often a reset email can be requested per address.
type resetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthHandler handles registration, login and the token workflows.
type AuthHandler struct {
	credentials ports.CredentialService
	sessions    ports.SessionStore
	notifier    ports.Notifier
	resetQueue  notificationDispatcher
	throttle    resetThrottle
	jwtSecret   string
	sessionTTL  time.Duration
	log         zerolog.Logger
}

func NewAuthHandler(
	credentials ports.CredentialService,
	sessions ports.SessionStore,
	notifier ports.Notifier,
	resetQueue notificationDispatcher,
	throttle resetThrottle,
	jwtSecret string,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		sessions:    sessions,
		notifier:    notifier,
		resetQueue:  resetQueue,
		throttle:    throttle,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

// Register creates a new account and sends the verification email.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	created, err := h.credentials.CreateAccount(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrDuplicateAccount):
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return c.JSON(http.StatusConflict, errorResponse{Error: "account already exists"})
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	// The verification email is sent synchronously: if it cannot be
	// delivered, sign-up is reported as failed even though the record
	// already exists and a later attempt with the same address answers
	// 409. Clearing that account requires support intervention; there is
	// no resend endpoint.
	err = h.notifier.Send(c.Request().Context(), created.Account.Email, created.Account.FullName,
		created.VerificationToken, domain.TokenKindVerification)
	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(string(domain.TokenKindVerification), "error").Inc()
		h.log.Error().Err(err).Msg("verification email failed")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "account created but verification email could not be sent"})
	}
	metrics.NotificationsSentTotal.WithLabelValues(string(domain.TokenKindVerification), "sent").Inc()
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	return c.JSON(http.StatusCreated, registerResponse{
		User:    toAccountResponse(created.Account),
		Message: "check your inbox for a verification link",
	})
}

// Login authenticates a user, persists the session descriptor and returns a
// bearer token.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and remember-me flag"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	summary, err := h.credentials.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("password", "invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		case errors.Is(err, domain.ErrEmailUnverified):
			metrics.LoginsTotal.WithLabelValues("password", "unverified").Inc()
			return c.JSON(http.StatusForbidden, errorResponse{Error: "email not verified"})
		default:
			metrics.LoginsTotal.WithLabelValues("password", "error").Inc()
			return err
		}
	}

	token, err := establishSession(c, h.sessions, summary, req.RememberMe, h.jwtSecret, h.sessionTTL)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "error").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  toAccountResponse(summary),
	})
}

// ForgotPassword issues a reset token and queues the notification. The
// response is the same whether or not the account exists.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  forgotPasswordResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	uniform := forgotPasswordResponse{Message: "if an account exists for that address, a reset email has been sent"}

	// One reset email per address per cooldown window. A throttled request
	// gets the same 202 as a successful one. The throttle fails open: a
	// Redis hiccup must not block legitimate resets.
	allowed, err := h.throttle.Allow(c.Request().Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		h.log.Warn().Err(err).Msg("reset throttle check failed")
	} else if !allowed {
		metrics.PasswordResetRequestsTotal.WithLabelValues("throttled").Inc()
		return c.JSON(http.StatusAccepted, uniform)
	}

	reset, err := h.credentials.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrAccountNotFound):
			// Unknown address: respond exactly as on success so the endpoint
			// cannot confirm account existence.
			metrics.PasswordResetRequestsTotal.WithLabelValues("not_found").Inc()
			h.log.Info().Msg("password reset requested for unknown address")
			return c.JSON(http.StatusAccepted, uniform)
		default:
			metrics.PasswordResetRequestsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	h.resetQueue.Enqueue(queue.Notification{
		ToEmail:       reset.Email,
		RecipientName: reset.FullName,
		Token:         reset.Token,
		Kind:          domain.TokenKindPasswordReset,
	})
	metrics.PasswordResetRequestsTotal.WithLabelValues("issued").Inc()

	return c.JSON(http.StatusAccepted, uniform)
}

// ResetPassword redeems a reset token for a new password.
//
// @Summary      Reset the password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  forgotPasswordResponse
// @Failure      400   {object}  errorResponse
// @Failure      410   {object}  errorResponse
// @Router       /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	kind := string(domain.TokenKindPasswordReset)
	err := h.credentials.ResetPassword(c.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrTokenExpired):
			metrics.TokensRedeemedTotal.WithLabelValues(kind, "expired").Inc()
			return c.JSON(http.StatusGone, errorResponse{Error: "token expired"})
		case errors.Is(err, domain.ErrInvalidToken):
			metrics.TokensRedeemedTotal.WithLabelValues(kind, "invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid or expired token"})
		default:
			return err
		}
	}
	metrics.TokensRedeemedTotal.WithLabelValues(kind, "success").Inc()

	return c.JSON(http.StatusOK, forgotPasswordResponse{Message: "password updated"})
}

// VerifyEmail redeems a verification token.
//
// @Summary      Verify an email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Verification token"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/verify [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	kind := string(domain.TokenKindVerification)
	summary, err := h.credentials.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			metrics.TokensRedeemedTotal.WithLabelValues(kind, "invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid or expired token"})
		}
		return err
	}
	metrics.TokensRedeemedTotal.WithLabelValues(kind, "success").Inc()

	return c.JSON(http.StatusOK, registerResponse{
		User:    toAccountResponse(summary),
		Message: "email verified",
	})
}

func toAccountResponse(summary *domain.AccountSummary) accountResponse {
	return accountResponse{
		ID:       summary.ID,
		Email:    summary.Email,
		FullName: summary.FullName,
		Verified: summary.Verified,
	}
}
