package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
)

// SessionHandler exposes the caller's resolved role and capabilities.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Me returns the session snapshot without triggering a lookup.
//
// @Summary      Current actor and role
// @Tags         session
// @Security     BearerAuth
// @Produce      json
// @Param        X-Profile-ID  header    string  false  "Browser profile owning the acting-mode flag"
// @Success      200           {object}  sessionResponse
// @Failure      401           {object}  errorResponse
// @Router       /v1/me [get]
func (h *SessionHandler) Me(c echo.Context) error {
	resolver := middleware.ResolverFrom(c)
	overlay := middleware.AdminModeFrom(c)
	return c.JSON(http.StatusOK, toSessionResponse(c.Request().Context(), resolver.Snapshot(), overlay))
}

// Refresh re-queries identity and directory and returns the resulting
// snapshot. A superseded refresh answers with whatever the newer one left.
//
// @Summary      Refresh role
// @Tags         session
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	snap := middleware.ResolverFrom(c).Refresh(ctx)
	return c.JSON(http.StatusOK, toSessionResponse(ctx, snap, middleware.AdminModeFrom(c)))
}
