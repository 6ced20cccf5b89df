package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
)

// AdminModeHandler reads and flips the acting-mode flag. Writes from anyone
// but an admin are accepted and ignored; the response shows the unchanged state.
type AdminModeHandler struct{}

func NewAdminModeHandler() *AdminModeHandler {
	return &AdminModeHandler{}
}

// Get
//
// @Summary      Acting-mode state
// @Tags         admin-mode
// @Security     BearerAuth
// @Produce      json
// @Param        X-Profile-ID  header    string  false  "Browser profile owning the flag"
// @Success      200           {object}  adminModeResponse
// @Router       /v1/me/admin-mode [get]
func (h *AdminModeHandler) Get(c echo.Context) error {
	return h.render(c)
}

// Set stores an explicit value.
//
// @Summary      Set acting mode
// @Tags         admin-mode
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      setAdminModeRequest  true  "Desired state"
// @Success      200   {object}  adminModeResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/me/admin-mode [put]
func (h *AdminModeHandler) Set(c echo.Context) error {
	var req setAdminModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if _, err := middleware.AdminModeFrom(c).Set(c.Request().Context(), *req.Enabled); err != nil {
		return err
	}
	return h.render(c)
}

// Toggle flips the stored value.
//
// @Summary      Toggle acting mode
// @Tags         admin-mode
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  adminModeResponse
// @Router       /v1/me/admin-mode/toggle [post]
func (h *AdminModeHandler) Toggle(c echo.Context) error {
	if _, err := middleware.AdminModeFrom(c).Toggle(c.Request().Context()); err != nil {
		return err
	}
	return h.render(c)
}

func (h *AdminModeHandler) render(c echo.Context) error {
	overlay := middleware.AdminModeFrom(c)
	return c.JSON(http.StatusOK, adminModeResponse{
		Active:    overlay.IsActive(c.Request().Context()),
		CanToggle: overlay.CanToggle(),
	})
}
