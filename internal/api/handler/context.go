package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
)

// ctxSessionID extracts the session id injected by the Auth middleware. Its
// presence proves the middleware ran.
func ctxSessionID(c echo.Context) (string, error) {
	sessionID, _ := c.Get(middleware.KeySessionID).(string)
	if sessionID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sessionID, nil
}
