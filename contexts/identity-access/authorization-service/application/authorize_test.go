package application

import (
	"context"
	"testing"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	"carebridge/contexts/identity-access/authorization-service/domain/services"
	"carebridge/internal/shared/audit"
)

func TestAllowDoesNotAudit(t *testing.T) {
	sink := audit.NewMemorySink()
	gate := AuthorizeUseCase{Audit: sink}

	decision := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: entities.Identity{ID: "mod-1", Role: entities.RoleModerator},
		Resource: services.ResourceSubmission,
		Action:   services.ActionWrite,
	})
	if !decision.Allowed {
		t.Fatalf("expected allow, got deny %q", decision.Reason)
	}
	if len(sink.Entries()) != 0 {
		t.Fatalf("allows must not be audited by the gate, found %d entries", len(sink.Entries()))
	}
}

func TestRoleDeniedBeforeOwnershipCheck(t *testing.T) {
	sink := audit.NewMemorySink()
	gate := AuthorizeUseCase{Audit: sink}

	// A shop has no submission write entry at all; even the true owner id
	// must be denied with a role reason, never an ownership reason.
	decision := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: entities.Identity{ID: "shop-1", Role: entities.RoleShop},
		Resource: services.ResourceSubmission,
		Action:   services.ActionWrite,
		OwnerID:  "shop-1",
	})
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if decision.Reason != ReasonInsufficientRole {
		t.Fatalf("expected insufficient_role, got %q", decision.Reason)
	}
}

func TestOwnOnlyGrant(t *testing.T) {
	sink := audit.NewMemorySink()
	gate := AuthorizeUseCase{Audit: sink}
	caregiver := entities.Identity{ID: "cg-1", Role: entities.RoleCaregiver}

	own := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: caregiver,
		Resource: services.ResourceSubmission,
		Action:   services.ActionWrite,
		OwnerID:  "cg-1",
	})
	if !own.Allowed || own.Reason != ReasonOwnResource {
		t.Fatalf("expected own-resource allow, got %+v", own)
	}

	other := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: caregiver,
		Resource: services.ResourceSubmission,
		Action:   services.ActionWrite,
		OwnerID:  "cg-2",
	})
	if other.Allowed || other.Reason != ReasonNotOwner {
		t.Fatalf("expected not_owner deny, got %+v", other)
	}

	missing := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: caregiver,
		Resource: services.ResourceSubmission,
		Action:   services.ActionWrite,
	})
	if missing.Allowed || missing.Reason != ReasonOwnerUnresolved {
		t.Fatalf("expected owner_unresolved deny, got %+v", missing)
	}
}

func TestLinkedOwnership(t *testing.T) {
	gate := AuthorizeUseCase{Audit: audit.NewMemorySink()}
	guardian := entities.Identity{
		ID:     "grd-1",
		Role:   entities.RoleGuardian,
		Linked: map[string]struct{}{"pat-7": {}},
	}

	decision := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: guardian,
		Resource: services.ResourcePatient,
		Action:   services.ActionWrite,
		OwnerID:  "pat-7",
	})
	if !decision.Allowed {
		t.Fatalf("expected linked-patient allow, got deny %q", decision.Reason)
	}
}

func TestDenialIsAudited(t *testing.T) {
	sink := audit.NewMemorySink()
	gate := AuthorizeUseCase{Audit: sink}

	gate.Execute(context.Background(), AuthorizeRequest{
		Identity: entities.Identity{ID: "grd-1", Role: entities.RoleGuardian},
		Resource: services.ResourceAudit,
		Action:   services.ActionRead,
	})

	entries := sink.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].Reason != ReasonInsufficientRole {
		t.Fatalf("expected insufficient_role audit reason, got %q", entries[0].Reason)
	}
	if entries[0].ActorID != "grd-1" || entries[0].EntityType != "audit" {
		t.Fatalf("unexpected audit entry %+v", entries[0])
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	gate := AuthorizeUseCase{Audit: audit.NewMemorySink()}
	decision := gate.Execute(context.Background(), AuthorizeRequest{
		Identity: entities.Identity{ID: "x-1", Role: entities.Role("intern")},
		Resource: services.ResourceSubmission,
		Action:   services.ActionRead,
	})
	if decision.Allowed || decision.Reason != ReasonUnknownRole {
		t.Fatalf("expected unknown_role deny, got %+v", decision)
	}
}
