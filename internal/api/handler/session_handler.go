package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memberdesk/accounts-api/internal/core/ports"
)

// SessionHandler exposes the persisted session descriptor and the one-time
// welcome-modal flag.
type SessionHandler struct {
	sessions ports.SessionStore
}

func NewSessionHandler(sessions ports.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Current returns the active session descriptor, or a null session when none
// exists. Absence is a normal response; this endpoint never fails on a
// missing session.
//
// @Summary      Fetch the current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	userID, sessionID, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	descriptor, err := h.sessions.Current(c.Request().Context(), userID, sessionID)
	if err != nil {
		return err
	}
	if descriptor == nil {
		return c.JSON(http.StatusOK, sessionResponse{Session: nil})
	}

	return c.JSON(http.StatusOK, sessionResponse{Session: &sessionDescriptorResponse{
		UserID:    descriptor.UserID,
		Email:     descriptor.Email,
		FullName:  descriptor.FullName,
		CreatedAt: descriptor.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

// Logout clears the descriptor from whichever scope holds it. Idempotent.
//
// @Summary      Logout
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Clear(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Welcome reports whether the one-time welcome modal was already shown.
//
// @Summary      Welcome-modal flag
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  welcomeResponse
// @Router       /session/welcome [get]
func (h *SessionHandler) Welcome(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	shown, err := h.sessions.WelcomeShown(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, welcomeResponse{Shown: shown})
}

// MarkWelcome records that the welcome modal was shown for this session.
//
// @Summary      Mark the welcome modal shown
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  welcomeResponse
// @Router       /session/welcome [post]
func (h *SessionHandler) MarkWelcome(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.sessions.MarkWelcomeShown(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, welcomeResponse{Shown: true})
}
