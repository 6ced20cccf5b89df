package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/api/metrics"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

// RoleService administers role assignments and announces changes so live
// sessions of the affected actor re-resolve.
type RoleService struct {
	directory ports.RoleDirectory
	users     ports.AuthRepository
	events    ports.AccessEvents
	log       zerolog.Logger
}

func NewRoleService(directory ports.RoleDirectory, users ports.AuthRepository, events ports.AccessEvents, log zerolog.Logger) *RoleService {
	return &RoleService{directory: directory, users: users, events: events, log: log}
}

// AssignRole replaces the actor's active role. The bool mirrors the
// directory: false means the actor may now hold no active role at all.
func (s *RoleService) AssignRole(ctx context.Context, actorID string, role domain.Role) (bool, error) {
	if actorID == "" || !role.Valid() {
		return false, domain.ErrUnknownRole
	}

	ok := s.directory.AssignRole(ctx, actorID, role)
	if !ok {
		metrics.RoleAssignmentsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Str("actor_id", actorID).Str("role", role.String()).Msg("role assignment failed")
	} else {
		metrics.RoleAssignmentsTotal.WithLabelValues("ok").Inc()
		s.log.Info().Str("actor_id", actorID).Str("role", role.String()).Msg("role assigned")
	}

	// Sessions re-resolve even on failure: the actor may have lost its role.
	event := domain.AccessEvent{
		Kind:       domain.EventRoleAssigned,
		ActorID:    actorID,
		Role:       role,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Error().Err(err).Str("actor_id", actorID).Msg("failed to publish role change")
	}
	return ok, nil
}

// ListUsersWithRoles returns every active assignment with the actor's email
// filled in when the account is still known.
func (s *RoleService) ListUsersWithRoles(ctx context.Context) ([]domain.RoleAssignment, error) {
	assignments, err := s.directory.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].Email != "" {
			continue
		}
		user, err := s.users.FindByID(ctx, assignments[i].ActorID)
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				s.log.Warn().Err(err).Str("actor_id", assignments[i].ActorID).Msg("could not load user for assignment")
			}
			continue
		}
		assignments[i].Email = user.Email
	}
	return assignments, nil
}
