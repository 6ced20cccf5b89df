package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// SessionStore keeps signed-in identities keyed by session id.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores identity until ttl elapses.
func (s *SessionStore) Save(ctx context.Context, identity domain.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(identity.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// CurrentIdentity returns nil, nil when the session is unknown or expired.
func (s *SessionStore) CurrentIdentity(ctx context.Context, sessionID string) (*domain.Identity, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, domain.NewLookupError("current_identity", err)
	}
	return decodeIdentity(raw)
}

// Delete removes the session and returns who it belonged to, if anyone.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) (*domain.Identity, error) {
	raw, err := s.client.GetDel(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return decodeIdentity(raw)
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}

func decodeIdentity(raw []byte) (*domain.Identity, error) {
	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, domain.NewLookupError("decode_session", err)
	}
	return &id, nil
}
