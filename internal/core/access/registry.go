package access

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

const defaultRegistrySize = 4096

// RegistryOptions tunes the per-session resolver cache.
type RegistryOptions struct {
	Size           int
	SessionTTL     time.Duration
	ResolveTimeout time.Duration
}

// Registry holds one Resolver per session so that every request of a session
// reads the same snapshot. Entries expire with the session; an evicted
// resolver is reset so late results from it are discarded.
type Registry struct {
	identity  ports.IdentitySource
	directory ports.RoleDirectory
	timeout   time.Duration
	log       zerolog.Logger

	mu        sync.Mutex
	resolvers *expirable.LRU[string, *Resolver]
}

func NewRegistry(identity ports.IdentitySource, directory ports.RoleDirectory, opts RegistryOptions, log zerolog.Logger) *Registry {
	if opts.Size <= 0 {
		opts.Size = defaultRegistrySize
	}
	reg := &Registry{
		identity:  identity,
		directory: directory,
		timeout:   opts.ResolveTimeout,
		log:       log,
	}
	reg.resolvers = expirable.NewLRU[string, *Resolver](opts.Size, func(_ string, r *Resolver) {
		r.Reset()
		metrics.LiveResolvers.Dec()
	}, opts.SessionTTL)
	return reg
}

// Resolver returns the resolver of sessionID, creating it on first use.
func (reg *Registry) Resolver(sessionID string) *Resolver {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r, ok := reg.resolvers.Get(sessionID); ok {
		return r
	}
	r := NewResolver(sessionID, reg.identity, reg.directory, reg.timeout, reg.log)
	reg.resolvers.Add(sessionID, r)
	metrics.LiveResolvers.Inc()
	return r
}

// Terminate tears down the resolver of a signed-out session. The evicted
// resolver is reset, so requests still holding it see nothing resolved.
func (reg *Registry) Terminate(sessionID string) {
	if sessionID == "" {
		return
	}
	reg.resolvers.Remove(sessionID)
}

// RefreshActor re-resolves every live session of actorID and returns how many
// were refreshed. Sessions still uninitialized are left for their first mount.
func (reg *Registry) RefreshActor(ctx context.Context, actorID string) int {
	n := 0
	for _, r := range reg.resolvers.Values() {
		if r.Snapshot().ActorID != actorID {
			continue
		}
		r.Refresh(ctx)
		n++
	}
	return n
}

func (reg *Registry) Len() int { return reg.resolvers.Len() }

// HandleAccessEvent applies identity and role changes to live sessions.
func (reg *Registry) HandleAccessEvent(ctx context.Context, event domain.AccessEvent) error {
	switch event.Kind {
	case domain.EventSignedOut:
		reg.Terminate(event.SessionID)
	case domain.EventRoleAssigned:
		n := reg.RefreshActor(ctx, event.ActorID)
		reg.log.Debug().Str("actor_id", event.ActorID).Int("sessions", n).Msg("role change applied to live sessions")
	case domain.EventSignedIn:
		reg.log.Debug().Str("actor_id", event.ActorID).Str("session_id", event.SessionID).Msg("actor signed in")
	default:
		reg.log.Warn().Str("kind", string(event.Kind)).Msg("ignoring unknown access event")
	}
	return nil
}
