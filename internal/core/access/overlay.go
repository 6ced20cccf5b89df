package access

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

// AdminMode is the acting-mode overlay of one session. While it is active an
// admin is presented to gates as domain.ActingRole. It only ever narrows
// privilege.
//
// The admin check runs on every call against the resolver's current
// snapshot, so a downgrade takes effect immediately. The stored flag is only
// read while the actor is admin and is not cleared on downgrade.
type AdminMode struct {
	resolver *Resolver
	store    ports.AdminModeStore
	profile  string
	log      zerolog.Logger
}

func NewAdminMode(resolver *Resolver, store ports.AdminModeStore, profile string, log zerolog.Logger) *AdminMode {
	return &AdminMode{resolver: resolver, store: store, profile: profile, log: log}
}

// CanToggle is true only while the resolved role is exactly admin.
func (m *AdminMode) CanToggle() bool {
	return HasRole(m.resolver.Snapshot(), domain.RoleAdmin)
}

// IsActive computes the effective flag. Store errors read as inactive.
func (m *AdminMode) IsActive(ctx context.Context) bool {
	if !m.CanToggle() {
		return false
	}
	enabled, err := m.store.Get(ctx, m.profile)
	if err != nil {
		m.log.Warn().Err(err).Str("profile", m.profile).Msg("admin mode flag unreadable, treating as inactive")
		return false
	}
	return enabled
}

// Set stores the flag. It is a no-op returning false for anyone but an admin.
func (m *AdminMode) Set(ctx context.Context, enabled bool) (bool, error) {
	if !m.CanToggle() {
		return false, nil
	}
	if err := m.store.Set(ctx, m.profile, enabled); err != nil {
		return false, err
	}
	metrics.AdminModeChangesTotal.WithLabelValues(strconv.FormatBool(enabled)).Inc()
	return true, nil
}

// Toggle flips the flag and returns the new effective value.
func (m *AdminMode) Toggle(ctx context.Context) (bool, error) {
	if !m.CanToggle() {
		return false, nil
	}
	next := !m.IsActive(ctx)
	if _, err := m.Set(ctx, next); err != nil {
		return false, err
	}
	return m.IsActive(ctx), nil
}

// Effective returns the snapshot gates should see for this session.
func (m *AdminMode) Effective(ctx context.Context) *Snapshot {
	return Restrict(m.resolver.Snapshot(), m.IsActive(ctx))
}

// Restrict presents an admin as the acting role while acting mode is active.
// Any other snapshot is returned unchanged.
func Restrict(s *Snapshot, active bool) *Snapshot {
	if !active || !HasRole(s, domain.RoleAdmin) {
		return s
	}
	return s.withRole(domain.ActingRole)
}

type adminModeKey struct{}

// WithAdminMode scopes m to ctx.
func WithAdminMode(ctx context.Context, m *AdminMode) context.Context {
	return context.WithValue(ctx, adminModeKey{}, m)
}

// AdminModeFrom returns the overlay bound to ctx, or nil.
func AdminModeFrom(ctx context.Context) *AdminMode {
	m, _ := ctx.Value(adminModeKey{}).(*AdminMode)
	return m
}

// MustAdminMode panics with domain.InvariantViolation when ctx carries no
// overlay. Reaching it outside a session scope is a wiring bug.
func MustAdminMode(ctx context.Context) *AdminMode {
	m := AdminModeFrom(ctx)
	if m == nil {
		panic(domain.InvariantViolation{Msg: "admin mode used outside a session scope"})
	}
	return m
}
