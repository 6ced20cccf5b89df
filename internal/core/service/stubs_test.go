package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

type stubAuthRepo struct {
	users map[string]*domain.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Username
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

type stubSessions struct {
	sessions  map[string]domain.Identity
	ttl       time.Duration
	err       error
	deleteErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]domain.Identity)}
}

func (s *stubSessions) CurrentIdentity(_ context.Context, sessionID string) (*domain.Identity, error) {
	id, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (s *stubSessions) Save(_ context.Context, identity domain.Identity, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.sessions[identity.SessionID] = identity
	s.ttl = ttl
	return nil
}

func (s *stubSessions) Delete(_ context.Context, sessionID string) (*domain.Identity, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	id, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, sessionID)
	return &id, nil
}

type stubDirectory struct {
	assignments []domain.RoleAssignment
	failInsert  bool
	listErr     error
}

func (d *stubDirectory) FetchActiveRole(_ context.Context, actorID string) (domain.Role, error) {
	for _, a := range d.assignments {
		if a.ActorID == actorID && a.IsActive {
			return a.Role, nil
		}
	}
	return domain.RoleNone, nil
}

func (d *stubDirectory) AssignRole(_ context.Context, actorID string, role domain.Role) bool {
	for i := range d.assignments {
		if d.assignments[i].ActorID == actorID {
			d.assignments[i].IsActive = false
		}
	}
	if d.failInsert {
		return false
	}
	d.assignments = append(d.assignments, domain.RoleAssignment{ActorID: actorID, Role: role, IsActive: true})
	return true
}

func (d *stubDirectory) ListActive(context.Context) ([]domain.RoleAssignment, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	var out []domain.RoleAssignment
	for _, a := range d.assignments {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (d *stubDirectory) activeCount(actorID string) int {
	n := 0
	for _, a := range d.assignments {
		if a.ActorID == actorID && a.IsActive {
			n++
		}
	}
	return n
}

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.AccessEvent
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, event domain.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) kinds() []domain.AccessEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AccessEventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type recordingTerminator struct {
	terminated []string
}

func (r *recordingTerminator) Terminate(sessionID string) {
	r.terminated = append(r.terminated, sessionID)
}

var errBoom = errors.New("boom")
