package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

// HeaderProfileID names the browser profile the acting-mode flag belongs to.
// Clients without one share the flag across the whole session. The flag is
// always stored under the caller's actor, see ProfileKey.
const HeaderProfileID = "X-Profile-ID"

const (
	keyResolver  = "access.resolver"
	keyAdminMode = "access.admin_mode"
)

// Session binds the caller's session resolver and acting-mode overlay to the
// request. The first request of a session runs the initial resolution; later
// ones read the shared snapshot. Must run after Auth.
func Session(registry *access.Registry, flags ports.AdminModeStore, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, _ := c.Get(KeySessionID).(string)
			actorID, _ := c.Get(KeyActorID).(string)
			if sessionID == "" || actorID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			req := c.Request()
			resolver := registry.Resolver(sessionID)
			resolver.Mount(req.Context())

			profile := req.Header.Get(HeaderProfileID)
			if profile == "" {
				profile = sessionID
			}
			overlay := access.NewAdminMode(resolver, flags, ProfileKey(actorID, profile), log)

			c.Set(keyResolver, resolver)
			c.Set(keyAdminMode, overlay)
			c.SetRequest(req.WithContext(access.WithAdminMode(req.Context(), overlay)))

			return next(c)
		}
	}
}

// ProfileKey scopes a client-chosen profile to the authenticated actor, so a
// profile id can never reach another actor's flag.
func ProfileKey(actorID, profile string) string {
	return actorID + ":" + profile
}

// ResolverFrom returns the session resolver bound by Session, or nil.
func ResolverFrom(c echo.Context) *access.Resolver {
	r, _ := c.Get(keyResolver).(*access.Resolver)
	return r
}

// AdminModeFrom returns the overlay bound by Session. Calling it on a route
// without Session panics with domain.InvariantViolation.
func AdminModeFrom(c echo.Context) *access.AdminMode {
	return access.MustAdminMode(c.Request().Context())
}

// Snapshot is the session snapshot as gates see it: acting mode applied.
func Snapshot(c echo.Context) *access.Snapshot {
	return AdminModeFrom(c).Effective(c.Request().Context())
}
