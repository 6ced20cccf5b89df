package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// ProtectedRoute admits actors at or above required. Denied requests are sent
// to the default route with 303 See Other so the client replaces the denied
// location instead of keeping it in history.
func ProtectedRoute(required domain.Role) echo.MiddlewareFunc {
	gate := access.NewRouteGate(required)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := gate.Decide(Snapshot(c))
			metrics.GateDecisionsTotal.WithLabelValues("route", d.String()).Inc()

			switch d {
			case access.DecisionAllow:
				return next(c)
			case access.DecisionLoading:
				return loadingPlaceholder(c)
			default:
				return c.Redirect(http.StatusSeeOther, gate.Redirect())
			}
		}
	}
}
