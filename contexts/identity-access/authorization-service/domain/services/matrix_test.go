package services

import (
	"testing"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
)

func TestLookupFailsClosed(t *testing.T) {
	roles := []entities.Role{
		entities.RoleSuperAdmin,
		entities.RoleAdmin,
		entities.RoleModerator,
		entities.RoleAgency,
		entities.RoleCaregiver,
		entities.RoleGuardian,
		entities.RoleShop,
	}
	// No role has any grant on an unconfigured resource.
	for _, role := range roles {
		if got := Lookup(role, Resource("medication"), ActionRead); got != OutcomeDeny {
			t.Fatalf("expected deny for %s on unconfigured resource, got %v", role, got)
		}
	}
	// Absent (role, resource, action) entries deny even for configured
	// resources.
	if got := Lookup(entities.RoleShop, ResourceSubmission, ActionWrite); got != OutcomeDeny {
		t.Fatalf("expected deny for shop submission write, got %v", got)
	}
	if got := Lookup(entities.RoleModerator, ResourceSubmission, ActionManage); got != OutcomeDeny {
		t.Fatalf("expected deny for moderator submission manage, got %v", got)
	}
	if got := Lookup(entities.RoleModerator, ResourceAudit, ActionRead); got != OutcomeDeny {
		t.Fatalf("expected deny for moderator audit read, got %v", got)
	}
}

func TestLookupExplicitEntries(t *testing.T) {
	cases := []struct {
		role     entities.Role
		resource Resource
		action   Action
		want     Outcome
	}{
		{entities.RoleModerator, ResourceSubmission, ActionWrite, OutcomeAllow},
		{entities.RoleAdmin, ResourceSubmission, ActionManage, OutcomeAllow},
		{entities.RoleCaregiver, ResourceSubmission, ActionWrite, OutcomeAllowOwn},
		{entities.RoleGuardian, ResourceDispute, ActionWrite, OutcomeAllowOwn},
		{entities.RoleGuardian, ResourcePatient, ActionWrite, OutcomeAllowOwn},
		{entities.RoleAdmin, ResourceAudit, ActionRead, OutcomeAllow},
	}
	for _, tc := range cases {
		if got := Lookup(tc.role, tc.resource, tc.action); got != tc.want {
			t.Fatalf("lookup(%s, %s, %s) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
		}
	}
}
