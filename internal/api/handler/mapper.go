package handler

import (
	"context"

	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

func toSessionResponse(ctx context.Context, snap *access.Snapshot, overlay *access.AdminMode) sessionResponse {
	active := overlay.IsActive(ctx)
	effective := access.Restrict(snap, active)

	caps := access.Granted(effective)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}

	return sessionResponse{
		Loading:       snap.Loading(),
		ActorID:       snap.ActorID,
		Email:         snap.Email,
		Role:          snap.EffectiveRole(),
		RoleLabel:     snap.EffectiveRole().Label(),
		EffectiveRole: effective.EffectiveRole(),
		Capabilities:  names,
		AdminMode:     adminModeResponse{Active: active, CanToggle: overlay.CanToggle()},
	}
}

func toAssignmentResponses(list []domain.RoleAssignment) listAssignmentsResponse {
	out := make([]assignmentResponse, len(list))
	for i, a := range list {
		out[i] = assignmentResponse{
			ActorID:   a.ActorID,
			Email:     a.Email,
			Role:      a.Role,
			RoleLabel: a.Role.Label(),
			Since:     a.CreatedAt,
		}
	}
	return listAssignmentsResponse{Data: out, Total: len(out)}
}
