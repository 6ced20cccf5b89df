package access

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

const defaultResolveTimeout = 5 * time.Second

// Resolver owns the role snapshot of one session.
//
// Resolutions are ordered by a monotonic counter. A result is installed only
// while its token is still the latest one requested; anything else is dropped
// on arrival. Readers load the snapshot pointer and never block.
type Resolver struct {
	sessionID string
	identity  ports.IdentitySource
	directory ports.RoleDirectory
	timeout   time.Duration
	log       zerolog.Logger

	seq     atomic.Uint64
	snap    atomic.Pointer[Snapshot]
	mounted atomic.Bool
}

func NewResolver(sessionID string, identity ports.IdentitySource, directory ports.RoleDirectory, timeout time.Duration, log zerolog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	r := &Resolver{
		sessionID: sessionID,
		identity:  identity,
		directory: directory,
		timeout:   timeout,
		log:       log.With().Str("session_id", sessionID).Logger(),
	}
	r.snap.Store(&Snapshot{State: StateUninitialized})
	return r
}

// Snapshot returns the current snapshot. Never nil.
func (r *Resolver) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Mount runs the first resolution. Later calls return the current snapshot,
// which may still be loading while the first resolution is in flight.
func (r *Resolver) Mount(ctx context.Context) *Snapshot {
	if r.mounted.CompareAndSwap(false, true) {
		return r.Refresh(ctx)
	}
	return r.Snapshot()
}

// Refresh re-queries the identity source and the directory. It never fails:
// lookup errors resolve to no role. The returned snapshot is whatever is
// current once this resolution finished, which is a newer one if this result
// turned out to be stale.
func (r *Resolver) Refresh(ctx context.Context) *Snapshot {
	r.mounted.Store(true)
	token := r.seq.Add(1)
	prev := r.Snapshot()
	r.advance(&Snapshot{State: StateLoading, ActorID: prev.ActorID, Email: prev.Email, seq: token})

	start := time.Now()
	next, outcome := r.resolve(ctx)
	metrics.RoleResolutionDuration.Observe(time.Since(start).Seconds())
	next.seq = token

	if !r.commit(next) {
		metrics.StaleResolutionsDiscarded.Inc()
		metrics.RoleResolutionsTotal.WithLabelValues("stale").Inc()
		r.log.Debug().Uint64("token", token).Msg("stale role resolution discarded")
		return r.Snapshot()
	}
	metrics.RoleResolutionsTotal.WithLabelValues(outcome).Inc()
	return next
}

// Reset drops the session state. In-flight resolutions become stale.
func (r *Resolver) Reset() {
	r.mounted.Store(false)
	r.advance(&Snapshot{State: StateUninitialized, seq: r.seq.Add(1)})
}

func (r *Resolver) resolve(ctx context.Context) (*Snapshot, string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	id, err := r.identity.CurrentIdentity(ctx, r.sessionID)
	if err != nil {
		r.log.Warn().Err(err).Msg("identity lookup failed, resolving to no role")
		return &Snapshot{State: StateResolved}, "lookup_error"
	}
	if id == nil {
		return &Snapshot{State: StateResolved}, "none"
	}

	snap := &Snapshot{State: StateResolved, ActorID: id.ActorID, Email: id.Email}
	role, err := r.directory.FetchActiveRole(ctx, id.ActorID)
	if err != nil {
		r.log.Warn().Err(err).Str("actor_id", id.ActorID).Msg("role lookup failed, resolving to no role")
		return snap, "lookup_error"
	}
	if !role.Valid() {
		return snap, "none"
	}
	snap.Role = role
	return snap, "resolved"
}

// advance installs next unless a newer token is already installed.
func (r *Resolver) advance(next *Snapshot) {
	for {
		cur := r.snap.Load()
		if cur.seq > next.seq {
			return
		}
		if r.snap.CompareAndSwap(cur, next) {
			return
		}
	}
}

// commit installs a result only if its token is the one currently loading.
func (r *Resolver) commit(next *Snapshot) bool {
	for {
		cur := r.snap.Load()
		if cur.seq != next.seq || cur.State != StateLoading {
			return false
		}
		if r.snap.CompareAndSwap(cur, next) {
			return true
		}
	}
}
