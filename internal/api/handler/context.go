package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxPrincipal extracts the user and session ids injected by the Auth
// middleware. A token missing either claim cannot address any stored
// session, so it is rejected with 401 before any store call.
func ctxPrincipal(c echo.Context) (userID, sessionID string, err error) {
	userID, _ = c.Get("user_id").(string)
	sessionID, _ = c.Get("session_id").(string)
	if userID == "" || sessionID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing session claims")
	}
	return userID, sessionID, nil
}
