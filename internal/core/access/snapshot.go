// Package access resolves the role of the signed-in actor and turns it into
// capability checks, gate decisions and the admin acting-mode overlay.
//
// One Resolver exists per session. Every gate reads the Resolver's current
// Snapshot; none of them query the role directory on their own.
package access

import "github.com/fieldsales/visit-tracker/internal/core/domain"

// State is the resolver lifecycle position.
type State uint8

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of a resolution. Each resolution installs a
// new Snapshot; fields are never changed after publication.
type Snapshot struct {
	State   State
	ActorID string
	Email   string
	Role    domain.Role

	seq uint64
}

// Loading is true until a resolution has completed. An uninitialized resolver
// counts as loading so that nothing is admitted before the first result.
func (s *Snapshot) Loading() bool {
	return s == nil || s.State != StateResolved
}

// Resolved reports whether the snapshot carries a final answer.
func (s *Snapshot) Resolved() bool {
	return s != nil && s.State == StateResolved
}

// EffectiveRole is the resolved role, or RoleNone while loading.
func (s *Snapshot) EffectiveRole() domain.Role {
	if !s.Resolved() {
		return domain.RoleNone
	}
	return s.Role
}

// withRole copies s with a different role. Used by the acting-mode restriction.
func (s *Snapshot) withRole(r domain.Role) *Snapshot {
	c := *s
	c.Role = r
	return &c
}
