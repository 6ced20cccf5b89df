package access

import "github.com/fieldsales/visit-tracker/internal/core/domain"

// Decision is the outcome of a gate.
type Decision uint8

const (
	DecisionLoading Decision = iota
	DecisionDeny
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "loading"
	}
}

// RoleGate admits a subtree when the resolved role is in Allowed. The set is
// explicit per call site and need not follow the hierarchy.
type RoleGate struct {
	Allowed domain.RoleSet
}

var (
	AdminOnly            = RoleGate{Allowed: domain.NewRoleSet(domain.RoleAdmin)}
	InternalAgentOrAdmin = RoleGate{Allowed: domain.NewRoleSet(domain.RoleAdmin, domain.RoleInternalAgent)}
	AgentOrAbove         = RoleGate{Allowed: domain.NewRoleSet(domain.RoleAdmin, domain.RoleInternalAgent, domain.RoleExternalAgent)}
	GuestOrAbove         = RoleGate{Allowed: domain.NewRoleSet(domain.AllRoles...)}
)

// NewRoleGate builds a gate from an explicit list of roles.
func NewRoleGate(roles ...domain.Role) RoleGate {
	return RoleGate{Allowed: domain.NewRoleSet(roles...)}
}

func (g RoleGate) Decide(s *Snapshot) Decision {
	if s.Loading() {
		return DecisionLoading
	}
	if HasAnyRole(s, g.Allowed) {
		return DecisionAllow
	}
	return DecisionDeny
}

// Render builds exactly one of the three branches. A nil branch yields the
// zero value of T.
func Render[T any](g RoleGate, s *Snapshot, content, fallback, loading func() T) T {
	var pick func() T
	switch g.Decide(s) {
	case DecisionAllow:
		pick = content
	case DecisionDeny:
		pick = fallback
	default:
		pick = loading
	}
	if pick == nil {
		var zero T
		return zero
	}
	return pick()
}

// DefaultRedirect is where denied route requests are sent.
const DefaultRedirect = "/"

// RouteGate admits a route for actors at or above Required. Guests and actors
// without a role are always redirected.
type RouteGate struct {
	Required   domain.Role
	RedirectTo string
}

func NewRouteGate(required domain.Role) RouteGate {
	return RouteGate{Required: required, RedirectTo: DefaultRedirect}
}

func (g RouteGate) Decide(s *Snapshot) Decision {
	if s.Loading() {
		return DecisionLoading
	}
	role := s.EffectiveRole()
	if !role.Valid() || role == domain.RoleGuest || !domain.AtLeast(role, g.Required) {
		return DecisionDeny
	}
	return DecisionAllow
}

// Redirect returns the target for a denied request.
func (g RouteGate) Redirect() string {
	if g.RedirectTo == "" {
		return DefaultRedirect
	}
	return g.RedirectTo
}
