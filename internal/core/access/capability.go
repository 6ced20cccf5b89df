package access

import "github.com/fieldsales/visit-tracker/internal/core/domain"

// Capability names something an actor may do. Each one maps to a fixed
// allow-list in capabilityRoles.
type Capability uint8

const (
	CapCreateEntries Capability = iota
	CapManageData
	CapViewAllEntries
	CapAdmin
	CapInternalAccess

	capabilityCount
)

// The array length is capabilityCount, so a missing row fails to compile.
var capabilityRoles = [capabilityCount]domain.RoleSet{
	CapCreateEntries:  domain.NewRoleSet(domain.RoleAdmin, domain.RoleInternalAgent, domain.RoleExternalAgent),
	CapManageData:     domain.NewRoleSet(domain.RoleAdmin),
	CapViewAllEntries: domain.NewRoleSet(domain.RoleAdmin),
	CapAdmin:          domain.NewRoleSet(domain.RoleAdmin),
	CapInternalAccess: domain.NewRoleSet(domain.RoleAdmin, domain.RoleInternalAgent),
}

var capabilityNames = [capabilityCount]string{
	CapCreateEntries:  "createEntries",
	CapManageData:     "manageData",
	CapViewAllEntries: "viewAllEntries",
	CapAdmin:          "admin",
	CapInternalAccess: "internalAccess",
}

// AllCapabilities lists every capability in declaration order.
func AllCapabilities() []Capability {
	out := make([]Capability, capabilityCount)
	for i := range out {
		out[i] = Capability(i)
	}
	return out
}

func (c Capability) String() string {
	if c >= capabilityCount {
		return "unknown"
	}
	return capabilityNames[c]
}

// Roles returns the allow-list behind c. Unknown capabilities allow nobody.
func (c Capability) Roles() domain.RoleSet {
	if c >= capabilityCount {
		return 0
	}
	return capabilityRoles[c]
}

// HasRole is false while loading and when no role is held.
func HasRole(s *Snapshot, expected domain.Role) bool {
	return s.Resolved() && expected.Valid() && s.Role == expected
}

// HasAnyRole is false while loading, when no role is held, and for the empty set.
func HasAnyRole(s *Snapshot, set domain.RoleSet) bool {
	return s.Resolved() && set.Has(s.Role)
}

// Can reports whether the snapshot grants c.
func Can(s *Snapshot, c Capability) bool {
	return HasAnyRole(s, c.Roles())
}

func CanCreateEntries(s *Snapshot) bool  { return Can(s, CapCreateEntries) }
func CanManageData(s *Snapshot) bool     { return Can(s, CapManageData) }
func CanViewAllEntries(s *Snapshot) bool { return Can(s, CapViewAllEntries) }
func IsAdmin(s *Snapshot) bool           { return Can(s, CapAdmin) }
func IsInternalAgent(s *Snapshot) bool   { return Can(s, CapInternalAccess) }

// Granted lists the capabilities s holds.
func Granted(s *Snapshot) []Capability {
	var out []Capability
	for _, c := range AllCapabilities() {
		if Can(s, c) {
			out = append(out, c)
		}
	}
	return out
}
