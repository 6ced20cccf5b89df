package access

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

type fakeIdentity struct {
	identity *domain.Identity
	err      error
}

func (f *fakeIdentity) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.identity == nil {
		return nil, nil
	}
	id := *f.identity
	id.SessionID = sessionID
	return &id, nil
}

func signedIn(actorID string) *fakeIdentity {
	return &fakeIdentity{identity: &domain.Identity{ActorID: actorID, Email: actorID + "@example.com"}}
}

type fakeDirectory struct {
	mu    sync.Mutex
	roles map[string]domain.Role
	fetch func(ctx context.Context, actorID string) (domain.Role, error)
	calls atomic.Int32
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{roles: make(map[string]domain.Role)}
}

func (d *fakeDirectory) set(actorID string, role domain.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[actorID] = role
}

func (d *fakeDirectory) FetchActiveRole(ctx context.Context, actorID string) (domain.Role, error) {
	d.calls.Add(1)
	if d.fetch != nil {
		return d.fetch(ctx, actorID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roles[actorID], nil
}

func (d *fakeDirectory) AssignRole(_ context.Context, actorID string, role domain.Role) bool {
	d.set(actorID, role)
	return true
}

func (d *fakeDirectory) ListActive(context.Context) ([]domain.RoleAssignment, error) {
	return nil, errors.New("not implemented")
}

type memoryAdminModeStore struct {
	mu    sync.Mutex
	flags map[string]bool
	err   error
}

func newMemoryAdminModeStore() *memoryAdminModeStore {
	return &memoryAdminModeStore{flags: make(map[string]bool)}
}

func (s *memoryAdminModeStore) Get(_ context.Context, profile string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.flags[profile], nil
}

func (s *memoryAdminModeStore) Set(_ context.Context, profile string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.flags[profile] = enabled
	return nil
}

func resolved(role domain.Role) *Snapshot {
	return &Snapshot{State: StateResolved, ActorID: "actor-1", Role: role}
}

func loading() *Snapshot {
	return &Snapshot{State: StateLoading, ActorID: "actor-1"}
}
