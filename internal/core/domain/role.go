package domain

import (
	"fmt"
	"strings"
)

// Role is a privilege level. The set is closed: only the constants below exist.
// The zero value RoleNone means "no role", not a fifth privilege level.
type Role uint8

const (
	RoleNone Role = iota
	RoleGuest
	RoleExternalAgent
	RoleInternalAgent
	RoleAdmin
)

// ActingRole is what an admin is presented as while acting mode is on.
const ActingRole = RoleInternalAgent

// AllRoles lists the closed set, lowest privilege first.
var AllRoles = []Role{RoleGuest, RoleExternalAgent, RoleInternalAgent, RoleAdmin}

var roleNames = [...]string{
	RoleNone:          "",
	RoleGuest:         "guest",
	RoleExternalAgent: "externalAgent",
	RoleInternalAgent: "internalAgent",
	RoleAdmin:         "admin",
}

var roleLabels = [...]string{
	RoleNone:          "No role",
	RoleGuest:         "Guest",
	RoleExternalAgent: "External Agent",
	RoleInternalAgent: "Internal Agent",
	RoleAdmin:         "Admin",
}

// ParseRole converts a wire name into a Role. Unknown names are rejected so a
// typo can never silently become a privilege.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r belongs to the closed set.
func (r Role) Valid() bool {
	return r >= RoleGuest && r <= RoleAdmin
}

func (r Role) String() string {
	if int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return roleNames[r]
}

// Label is the human readable name shown next to the actor.
func (r Role) Label() string {
	if int(r) >= len(roleLabels) {
		return roleLabels[RoleNone]
	}
	return roleLabels[r]
}

// Rank is strictly increasing with privilege. RoleNone ranks below every role.
func (r Role) Rank() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// AtLeast reports whether a is at least as privileged as b.
func AtLeast(a, b Role) bool {
	return a.Rank() >= b.Rank()
}

// MarshalText encodes RoleNone as an empty string.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*r = RoleNone
		return nil
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is an allow-list over the closed role set.
type RoleSet uint8

// NewRoleSet builds a set from explicit roles. RoleNone and invalid values are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if r.Valid() {
			s |= 1 << r
		}
	}
	return s
}

// Has reports membership. RoleNone is never a member.
func (s RoleSet) Has(r Role) bool {
	return r.Valid() && s&(1<<r) != 0
}

// Roles returns the members, lowest privilege first.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}
