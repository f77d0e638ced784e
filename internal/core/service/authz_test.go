package service

import (
	"errors"
	"testing"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		actual   domain.Role
		required domain.Role
		want     ports.Decision
	}{
		{"exact match", domain.RoleMember, domain.RoleMember, ports.DecisionAllowed},
		{"admin bypasses member requirement", domain.RoleAdmin, domain.RoleMember, ports.DecisionAllowed},
		{"admin requirement met", domain.RoleAdmin, domain.RoleAdmin, ports.DecisionAllowed},
		{"member cannot act as admin", domain.RoleMember, domain.RoleAdmin, ports.DecisionForbidden},
		{"unknown role forbidden", domain.Role("guest"), domain.RoleMember, ports.DecisionForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequireRole(tc.actual, tc.required); got != tc.want {
				t.Fatalf("RequireRole(%q, %q) = %v, want %v", tc.actual, tc.required, got, tc.want)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	cases := []struct {
		name    string
		actor   ports.Identity
		ownerID string
		want    ports.Decision
	}{
		{"owner allowed", ports.Identity{UserID: "u1", Role: domain.RoleMember}, "u1", ports.DecisionAllowed},
		{"admin bypasses ownership", ports.Identity{UserID: "u2", Role: domain.RoleAdmin}, "u1", ports.DecisionAllowed},
		{"non-owner forbidden", ports.Identity{UserID: "u2", Role: domain.RoleMember}, "u1", ports.DecisionForbidden},
		{"empty actor id never owns", ports.Identity{UserID: "", Role: domain.RoleMember}, "", ports.DecisionForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequireOwnership(tc.actor, tc.ownerID); got != tc.want {
				t.Fatalf("RequireOwnership(%+v, %q) = %v, want %v", tc.actor, tc.ownerID, got, tc.want)
			}
		})
	}
}

func TestDecisionError(t *testing.T) {
	if err := decisionError(ports.DecisionAllowed); err != nil {
		t.Fatalf("allowed decision must not error, got %v", err)
	}
	if err := decisionError(ports.DecisionBadRequest); !errors.Is(err, domain.ErrMissingResourceID) {
		t.Fatalf("expected ErrMissingResourceID, got %v", err)
	}
	if err := decisionError(ports.DecisionNotFound); !errors.Is(err, domain.ErrLetterNotFound) {
		t.Fatalf("expected ErrLetterNotFound, got %v", err)
	}
	if err := decisionError(ports.DecisionForbidden); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
