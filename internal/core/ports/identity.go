package ports

import (
	"context"
	"time"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// IdentitySource answers "who is signed in on this session". A nil identity
// with a nil error means nobody is signed in.
type IdentitySource interface {
	CurrentIdentity(ctx context.Context, sessionID string) (*domain.Identity, error)
}

// SessionStore persists sessions issued at login.
type SessionStore interface {
	IdentitySource
	Save(ctx context.Context, identity domain.Identity, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) (*domain.Identity, error)
}

// SessionTerminator drops whatever per-session state is held for a session
// that has ended.
type SessionTerminator interface {
	Terminate(sessionID string)
}

// AccessEvents carries identity and role changes between components.
type AccessEvents interface {
	Publish(ctx context.Context, event domain.AccessEvent) error
}

// AccessEventHandler reacts to a single access event.
type AccessEventHandler interface {
	HandleAccessEvent(ctx context.Context, event domain.AccessEvent) error
}
