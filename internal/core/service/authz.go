package service

import (
	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// RequireRole checks whether an actor's role satisfies the required role.
// Admin satisfies any requirement; otherwise the roles must match exactly.
func RequireRole(actual, required domain.Role) ports.Decision {
	if actual == domain.RoleAdmin {
		return ports.DecisionAllowed
	}
	if actual == required {
		return ports.DecisionAllowed
	}
	return ports.DecisionForbidden
}

// RequireOwnership checks whether the actor may touch a resource owned by
// ownerID. Admin bypasses the check.
func RequireOwnership(actor ports.Identity, ownerID string) ports.Decision {
	if actor.Role == domain.RoleAdmin {
		return ports.DecisionAllowed
	}
	if actor.UserID != "" && actor.UserID == ownerID {
		return ports.DecisionAllowed
	}
	return ports.DecisionForbidden
}

// decisionError maps a non-allowed decision onto the domain error the
// transport layer renders. Callers compose role and ownership checks by
// short-circuiting on the first non-nil error.
func decisionError(d ports.Decision) error {
	switch d {
	case ports.DecisionAllowed:
		return nil
	case ports.DecisionBadRequest:
		return domain.ErrMissingResourceID
	case ports.DecisionNotFound:
		return domain.ErrLetterNotFound
	default:
		return domain.ErrForbidden
	}
}
