package domain

import "time"

// RoleAssignment links an actor to a role. At most one assignment per actor is
// active; assigning a new role deactivates the previous ones first.
type RoleAssignment struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

