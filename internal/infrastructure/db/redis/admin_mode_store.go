package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// AdminModeStore persists the acting-mode flag per browser profile as the
// string "true" or "false". It has no expiry: the preference outlives sessions.
// Key format: adminMode:<profile>, where profile is already scoped to the
// actor as <actorID>:<profile id>.
type AdminModeStore struct {
	client *redis.Client
}

func NewAdminModeStore(client *redis.Client) *AdminModeStore {
	return &AdminModeStore{client: client}
}

// Get reads the flag. A missing key reads as false.
func (s *AdminModeStore) Get(ctx context.Context, profile string) (bool, error) {
	v, err := s.client.Get(ctx, s.key(profile)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("admin mode get: %w", err)
	}
	return v == "true", nil
}

func (s *AdminModeStore) Set(ctx context.Context, profile string, enabled bool) error {
	if err := s.client.Set(ctx, s.key(profile), strconv.FormatBool(enabled), 0).Err(); err != nil {
		return fmt.Errorf("admin mode set: %w", err)
	}
	return nil
}

func (s *AdminModeStore) key(profile string) string {
	return "adminMode:" + profile
}
