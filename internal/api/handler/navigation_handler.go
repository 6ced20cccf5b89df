package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
	"github.com/fieldsales/visit-tracker/internal/core/access"
)

// NavigationHandler builds the menu with one subtree gate per entry.
type NavigationHandler struct {
	pages []Page
}

func NewNavigationHandler(pages []Page) *NavigationHandler {
	return &NavigationHandler{pages: pages}
}

// List
//
// @Summary      Navigation menu
// @Tags         pages
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Router       /v1/navigation [get]
func (h *NavigationHandler) List(c echo.Context) error {
	snap := middleware.Snapshot(c)

	items := []navItem{{Key: "home", Label: "Home", Path: "/"}}
	for _, p := range h.pages {
		item := access.Render(p.Gate(), snap,
			func() *navItem { return &navItem{Key: p.Slug, Label: p.Title, Path: p.Path()} },
			func() *navItem { return nil },
			func() *navItem { return &navItem{Placeholder: true} },
		)
		if item != nil {
			items = append(items, *item)
		}
	}

	return c.JSON(http.StatusOK, navigationResponse{Loading: snap.Loading(), Items: items})
}
