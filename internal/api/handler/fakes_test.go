package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/middleware"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

type actorIdentity struct{}

func (actorIdentity) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	return &domain.Identity{ActorID: "actor-" + sessionID, Email: sessionID + "@example.com", SessionID: sessionID}, nil
}

type roleTable struct {
	mu    sync.Mutex
	roles map[string]domain.Role
	block chan struct{}
}

func (d *roleTable) FetchActiveRole(_ context.Context, actorID string) (domain.Role, error) {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roles[actorID], nil
}

func (d *roleTable) AssignRole(_ context.Context, actorID string, role domain.Role) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[actorID] = role
	return true
}

func (d *roleTable) ListActive(context.Context) ([]domain.RoleAssignment, error) {
	return nil, nil
}

type flagTable struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *flagTable) Get(_ context.Context, profile string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[profile], nil
}

func (f *flagTable) Set(_ context.Context, profile string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[profile] = enabled
	return nil
}

func (f *flagTable) stored(profile string) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.flags[profile]
	return v, ok
}

// flagKey is where the acting-mode flag of a session without a profile header
// is stored.
func flagKey(sessionID string) string {
	return middleware.ProfileKey("actor-"+sessionID, sessionID)
}

// sessionEnv runs handlers behind the real Session middleware.
type sessionEnv struct {
	registry *access.Registry
	roles    *roleTable
	flags    *flagTable
}

func newSessionEnv() *sessionEnv {
	roles := &roleTable{roles: make(map[string]domain.Role)}
	return &sessionEnv{
		registry: access.NewRegistry(actorIdentity{}, roles, access.RegistryOptions{SessionTTL: time.Hour, ResolveTimeout: time.Second}, zerolog.Nop()),
		roles:    roles,
		flags:    &flagTable{flags: make(map[string]bool)},
	}
}

func (e *sessionEnv) grant(sessionID string, role domain.Role) {
	e.roles.AssignRole(context.Background(), "actor-"+sessionID, role)
}

func (e *sessionEnv) do(t *testing.T, sessionID, method, body string, h echo.HandlerFunc, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	ec := echo.New()
	ec.Validator = NewValidator()

	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := ec.NewContext(req, rec)
	c.Set(middleware.KeyActorID, "actor-"+sessionID)
	c.Set(middleware.KeySessionID, sessionID)

	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	h = middleware.Session(e.registry, e.flags, zerolog.Nop())(h)
	if err := h(c); err != nil {
		ec.HTTPErrorHandler(err, c)
	}
	return rec
}
