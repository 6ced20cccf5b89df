package domain

import "time"

// AccessEventKind names what changed for an actor.
type AccessEventKind string

const (
	EventSignedIn     AccessEventKind = "identity.signed_in"
	EventSignedOut    AccessEventKind = "identity.signed_out"
	EventRoleAssigned AccessEventKind = "role.assigned"
)

// AccessEvent is published whenever a sign-in, sign-out or role assignment
// happens, so live sessions can re-resolve.
type AccessEvent struct {
	Kind       AccessEventKind `json:"kind"`
	ActorID    string          `json:"actor_id"`
	SessionID  string          `json:"session_id,omitempty"`
	Role       Role            `json:"role,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
