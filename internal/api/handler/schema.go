package handler

import (
	"time"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Session ---

type adminModeResponse struct {
	Active    bool `json:"active"`
	CanToggle bool `json:"can_toggle"`
}

// sessionResponse describes the caller as gates see it. Role is the resolved
// role; EffectiveRole has acting mode applied. Both are empty while loading.
type sessionResponse struct {
	Loading       bool              `json:"loading"`
	ActorID       string            `json:"actor_id,omitempty"`
	Email         string            `json:"email,omitempty"`
	Role          domain.Role       `json:"role"`
	RoleLabel     string            `json:"role_label"`
	EffectiveRole domain.Role       `json:"effective_role"`
	Capabilities  []string          `json:"capabilities"`
	AdminMode     adminModeResponse `json:"admin_mode"`
}

type setAdminModeRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// --- Roles ---

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type assignRoleResponse struct {
	ActorID  string      `json:"actor_id"`
	Role     domain.Role `json:"role"`
	Assigned bool        `json:"assigned"`
}

type assignmentResponse struct {
	ActorID   string      `json:"actor_id"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
	RoleLabel string      `json:"role_label"`
	Since     time.Time   `json:"since"`
}

type listAssignmentsResponse struct {
	Data  []assignmentResponse `json:"data"`
	Total int                  `json:"total"`
}

// --- Navigation & pages ---

// navItem is one navigation entry. Placeholder entries are skeleton rows sent
// while the role is still resolving; they carry no label or path.
type navItem struct {
	Key         string `json:"key,omitempty"`
	Label       string `json:"label,omitempty"`
	Path        string `json:"path,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

type navigationResponse struct {
	Loading bool      `json:"loading"`
	Items   []navItem `json:"items"`
}

type pageResponse struct {
	Page     string      `json:"page"`
	Title    string      `json:"title"`
	Role     domain.Role `json:"role"`
	ReadOnly bool        `json:"read_only"`
}
