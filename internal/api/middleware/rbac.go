package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/access"
)

// retryAfterSeconds is sent with loading placeholders.
const retryAfterSeconds = 1

// RoleGate admits requests whose effective role is in gate.Allowed.
func RoleGate(gate access.RoleGate) echo.MiddlewareFunc {
	return decide("role", gate.Decide)
}

// RequireCapability admits requests whose effective role grants capability.
func RequireCapability(capability access.Capability) echo.MiddlewareFunc {
	return decide("capability", access.RoleGate{Allowed: capability.Roles()}.Decide)
}

func decide(kind string, decision func(*access.Snapshot) access.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := decision(Snapshot(c))
			metrics.GateDecisionsTotal.WithLabelValues(kind, d.String()).Inc()

			switch d {
			case access.DecisionAllow:
				return next(c)
			case access.DecisionLoading:
				return loadingPlaceholder(c)
			default:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
		}
	}
}

func loadingPlaceholder(c echo.Context) error {
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}
