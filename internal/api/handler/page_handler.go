package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// Page is one application screen. Required is the minimum role admitted by
// the route gate; ReadOnlyFor lists roles that may open the page but not edit.
type Page struct {
	Slug        string
	Title       string
	Required    domain.Role
	ReadOnlyFor domain.RoleSet
}

// Path is where the page is mounted.
func (p Page) Path() string { return "/app/" + p.Slug }

// Gate is the navigation gate matching the route gate: everyone at or above
// Required except guests, who are always redirected.
func (p Page) Gate() access.RoleGate {
	var roles []domain.Role
	for _, r := range domain.AllRoles {
		if r != domain.RoleGuest && domain.AtLeast(r, p.Required) {
			roles = append(roles, r)
		}
	}
	return access.NewRoleGate(roles...)
}

var catalogReadOnly = domain.NewRoleSet(domain.RoleInternalAgent)

// Pages is the application's page table, in navigation order.
var Pages = []Page{
	{Slug: "visit-tracker", Title: "Visit Tracker", Required: domain.RoleExternalAgent},
	{Slug: "my-visits", Title: "My Visits", Required: domain.RoleExternalAgent},
	{Slug: "companies", Title: "Companies", Required: domain.RoleInternalAgent, ReadOnlyFor: catalogReadOnly},
	{Slug: "people", Title: "People", Required: domain.RoleInternalAgent, ReadOnlyFor: catalogReadOnly},
	{Slug: "selling-points", Title: "Selling Points", Required: domain.RoleInternalAgent, ReadOnlyFor: catalogReadOnly},
	{Slug: "activities", Title: "Activities", Required: domain.RoleInternalAgent, ReadOnlyFor: catalogReadOnly},
	{Slug: "performance", Title: "Performance", Required: domain.RoleAdmin},
	{Slug: "data-management", Title: "Data Management", Required: domain.RoleAdmin},
	{Slug: "order-management", Title: "Order Management", Required: domain.RoleAdmin},
}

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Show renders page for a caller already admitted by the route gate.
//
// @Summary      Open a page
// @Tags         pages
// @Security     BearerAuth
// @Produce      json
// @Param        page  path      string  true  "Page slug"
// @Success      200   {object}  pageResponse
// @Success      303   "Redirect to / when the role is too low"
// @Failure      503   {object}  map[string]string
// @Router       /app/{page} [get]
func (h *PageHandler) Show(page Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		role := middleware.Snapshot(c).EffectiveRole()
		return c.JSON(http.StatusOK, pageResponse{
			Page:     page.Slug,
			Title:    page.Title,
			Role:     role,
			ReadOnly: page.ReadOnlyFor.Has(role),
		})
	}
}

// Home is the default route every denied page redirects to. It is public.
//
// @Summary      Default route
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Router       / [get]
func (h *PageHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{Page: "home", Title: "Home"})
}
