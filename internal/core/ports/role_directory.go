package ports

import (
	"context"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// RoleDirectory is the single source of truth for the role an actor holds.
type RoleDirectory interface {
	// FetchActiveRole returns domain.RoleNone with a nil error when the actor has
	// no active assignment. Transport failures come back as *domain.LookupError.
	FetchActiveRole(ctx context.Context, actorID string) (domain.Role, error)

	// AssignRole deactivates every assignment of the actor, then inserts the new
	// one. It returns true only when the insert succeeded. A failed insert
	// leaves the actor without an active role; nothing is rolled back.
	AssignRole(ctx context.Context, actorID string, role domain.Role) bool

	// ListActive returns every active assignment.
	ListActive(ctx context.Context) ([]domain.RoleAssignment, error)
}
