package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/handler"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/service"
)

const testSecret = "router-secret"

type sessionIdentity struct{}

func (sessionIdentity) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	return &domain.Identity{ActorID: "actor-" + sessionID, SessionID: sessionID}, nil
}

type roleMap struct {
	mu    sync.Mutex
	roles map[string]domain.Role
}

func (d *roleMap) FetchActiveRole(_ context.Context, actorID string) (domain.Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roles[actorID], nil
}

func (d *roleMap) AssignRole(_ context.Context, actorID string, role domain.Role) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[actorID] = role
	return true
}

func (d *roleMap) ListActive(context.Context) ([]domain.RoleAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.RoleAssignment, 0, len(d.roles))
	for actor, role := range d.roles {
		out = append(out, domain.RoleAssignment{ActorID: actor, Role: role, IsActive: true})
	}
	return out, nil
}

type flagMap struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *flagMap) Get(_ context.Context, profile string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[profile], nil
}

func (f *flagMap) Set(_ context.Context, profile string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[profile] = enabled
	return nil
}

type noAuth struct{}

func (noAuth) Register(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not used")
}

func (noAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errors.New("not used")
}

func (noAuth) Logout(context.Context, string) error { return nil }

type directoryRoles struct{ dir *roleMap }

func (s directoryRoles) AssignRole(ctx context.Context, actorID string, role domain.Role) (bool, error) {
	return s.dir.AssignRole(ctx, actorID, role), nil
}

func (s directoryRoles) ListUsersWithRoles(ctx context.Context) ([]domain.RoleAssignment, error) {
	return s.dir.ListActive(ctx)
}

type testServer struct {
	handler http.Handler
	roles   *roleMap
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	roles := &roleMap{roles: make(map[string]domain.Role)}
	registry := access.NewRegistry(sessionIdentity{}, roles, access.RegistryOptions{SessionTTL: time.Hour, ResolveTimeout: time.Second}, zerolog.Nop())

	e := NewRouter(RouterDeps{
		Log:         zerolog.Nop(),
		JWTSecret:   testSecret,
		AuthService: noAuth{},
		RoleService: directoryRoles{dir: roles},
		Registry:    registry,
		AdminModes:  &flagMap{flags: make(map[string]bool)},
		Readiness:   map[string]handler.Check{"noop": func(context.Context) error { return nil }},
		Metrics:     prometheus.NewRegistry(),
	})
	return &testServer{handler: e, roles: roles}
}

func (s *testServer) tokenFor(t *testing.T, sessionID string, role domain.Role) string {
	t.Helper()
	s.roles.AssignRole(context.Background(), "actor-"+sessionID, role)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "actor-" + sessionID,
		"sid": sessionID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (s *testServer) call(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/", "/health", "/health/ready"} {
		if rec := srv.call(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.call(http.MethodGet, "/", "", "")

	rec := srv.call(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "visit_tracker_") {
		t.Fatalf("expected request metrics in output")
	}
}

func TestRouter_SessionRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/v1/me", "/v1/navigation", "/app/companies"} {
		if rec := srv.call(http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouter_UnknownRouteIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.call(http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_ActingModeHidesAdminRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "s-admin", domain.RoleAdmin)

	if rec := srv.call(http.MethodGet, "/v1/admin/roles", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with acting mode off, got %d", rec.Code)
	}
	if rec := srv.call(http.MethodGet, "/app/performance", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected admin page with acting mode off, got %d", rec.Code)
	}

	if rec := srv.call(http.MethodPut, "/v1/me/admin-mode", token, `{"enabled":true}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 enabling acting mode, got %d", rec.Code)
	}

	if rec := srv.call(http.MethodGet, "/v1/admin/roles", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with acting mode on, got %d", rec.Code)
	}
	if rec := srv.call(http.MethodGet, "/app/performance", token, ""); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect from admin page with acting mode on, got %d", rec.Code)
	}
	if rec := srv.call(http.MethodGet, "/app/companies", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected internal pages with acting mode on, got %d", rec.Code)
	}
}

func TestRouter_AssignRole(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "s-admin", domain.RoleAdmin)

	rec := srv.call(http.MethodPut, "/v1/admin/users/actor-x/role", token, `{"role":"externalAgent"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got, _ := srv.roles.FetchActiveRole(context.Background(), "actor-x"); got != domain.RoleExternalAgent {
		t.Fatalf("expected externalAgent stored, got %s", got)
	}
}

func TestRouter_PagesFollowRouteGates(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "s-ext", domain.RoleExternalAgent)

	if rec := srv.call(http.MethodGet, "/app/my-visits", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for my-visits, got %d", rec.Code)
	}

	rec := srv.call(http.MethodGet, "/app/companies", token, "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for companies, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestRouter_GuestIsRedirectedEverywhere(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "s-guest", domain.RoleGuest)

	for _, p := range handler.Pages {
		if rec := srv.call(http.MethodGet, p.Path(), token, ""); rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303 for guest, got %d", p.Path(), rec.Code)
		}
	}
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	created := *user
	created.ID = "actor-" + user.Username
	r.users[created.ID] = &created
	out := created
	return &out, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, domain.ErrUserNotFound
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Identity
}

func (s *memorySessions) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *memorySessions) Save(_ context.Context, identity domain.Identity, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[identity.SessionID] = identity
	return nil
}

func (s *memorySessions) Delete(_ context.Context, sessionID string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, sessionID)
	return &id, nil
}

// droppedEvents publishes nowhere, so only synchronous teardown can end a
// session's access.
type droppedEvents struct{}

func (droppedEvents) Publish(context.Context, domain.AccessEvent) error { return nil }

func TestRouter_LogoutEndsAccessImmediately(t *testing.T) {
	roles := &roleMap{roles: make(map[string]domain.Role)}
	sessions := &memorySessions{sessions: make(map[string]domain.Identity)}
	registry := access.NewRegistry(sessions, roles, access.RegistryOptions{SessionTTL: time.Hour, ResolveTimeout: time.Second}, zerolog.Nop())
	auth := service.NewAuthService(&memoryUsers{users: make(map[string]*domain.User)}, sessions, roles, droppedEvents{}, registry, service.AuthOptions{
		JWTSecret:           testSecret,
		TokenTTL:            time.Hour,
		BootstrapAdminEmail: "root@example.com",
	}, zerolog.Nop())

	srv := &testServer{
		handler: NewRouter(RouterDeps{
			Log:         zerolog.Nop(),
			JWTSecret:   testSecret,
			AuthService: auth,
			RoleService: directoryRoles{dir: roles},
			Registry:    registry,
			AdminModes:  &flagMap{flags: make(map[string]bool)},
			Metrics:     prometheus.NewRegistry(),
		}),
		roles: roles,
	}

	if rec := srv.call(http.MethodPost, "/auth/register", "", `{"username":"root","password":"secret1","email":"root@example.com"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec := srv.call(http.MethodPost, "/auth/login", "", `{"email":"root@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login: no token in %s", rec.Body.String())
	}

	if rec := srv.call(http.MethodGet, "/v1/admin/roles", login.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("before logout: expected 200, got %d", rec.Code)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one live resolver, got %d", registry.Len())
	}

	if rec := srv.call(http.MethodPost, "/auth/logout", login.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	if rec := srv.call(http.MethodGet, "/v1/admin/roles", login.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("after logout: expected 403, got %d", rec.Code)
	}
	if rec := srv.call(http.MethodGet, "/app/performance", login.Token, ""); rec.Code != http.StatusSeeOther {
		t.Fatalf("after logout: expected redirect, got %d", rec.Code)
	}
}
