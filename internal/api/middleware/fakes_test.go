package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

type staticIdentity struct{}

func (staticIdentity) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	return &domain.Identity{ActorID: "actor-" + sessionID, SessionID: sessionID}, nil
}

type mapDirectory struct {
	mu    sync.Mutex
	roles map[string]domain.Role
	block chan struct{}
}

func (d *mapDirectory) FetchActiveRole(ctx context.Context, actorID string) (domain.Role, error) {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roles[actorID], nil
}

func (d *mapDirectory) AssignRole(_ context.Context, actorID string, role domain.Role) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[actorID] = role
	return true
}

func (d *mapDirectory) ListActive(context.Context) ([]domain.RoleAssignment, error) {
	return nil, nil
}

type mapFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *mapFlags) Get(_ context.Context, profile string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[profile], nil
}

func (f *mapFlags) Set(_ context.Context, profile string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[profile] = enabled
	return nil
}

type env struct {
	registry *access.Registry
	dir      *mapDirectory
	flags    *mapFlags
}

func newEnv() *env {
	dir := &mapDirectory{roles: make(map[string]domain.Role)}
	return &env{
		registry: access.NewRegistry(staticIdentity{}, dir, access.RegistryOptions{SessionTTL: time.Hour, ResolveTimeout: time.Second}, zerolog.Nop()),
		dir:      dir,
		flags:    &mapFlags{flags: make(map[string]bool)},
	}
}

// serve runs h behind Session for a session whose actor holds role.
func (e *env) serve(t *testing.T, sessionID string, role domain.Role, h echo.HandlerFunc, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e.dir.AssignRole(context.Background(), "actor-"+sessionID, role)

	ec := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := ec.NewContext(req, rec)
	c.Set(KeyActorID, "actor-"+sessionID)
	c.Set(KeySessionID, sessionID)

	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	h = Session(e.registry, e.flags, zerolog.Nop())(h)
	if err := h(c); err != nil {
		ec.HTTPErrorHandler(err, c)
	}
	return rec
}

// acting stores the acting-mode flag the way Session reads it for a request
// without a profile header.
func (e *env) acting(sessionID string, on bool) {
	e.flags.Set(context.Background(), ProfileKey("actor-"+sessionID, sessionID), on)
}

func ok(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
