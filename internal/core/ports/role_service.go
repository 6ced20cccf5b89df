package ports

import (
	"context"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// RoleService covers role administration use cases.
type RoleService interface {
	AssignRole(ctx context.Context, actorID string, role domain.Role) (bool, error)
	ListUsersWithRoles(ctx context.Context) ([]domain.RoleAssignment, error)
}
