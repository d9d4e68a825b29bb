package services

import (
	"errors"
	"testing"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "carebridge/contexts/identity-access/authorization-service/domain/errors"
)

func TestRankOrdering(t *testing.T) {
	order := []entities.Role{
		entities.RoleSuperAdmin,
		entities.RoleAdmin,
		entities.RoleModerator,
		entities.RoleAgency,
		entities.RoleCaregiver,
	}
	for i := 0; i < len(order)-1; i++ {
		higher, err := Rank(order[i])
		if err != nil {
			t.Fatalf("rank %s: %v", order[i], err)
		}
		lower, err := Rank(order[i+1])
		if err != nil {
			t.Fatalf("rank %s: %v", order[i+1], err)
		}
		if higher <= lower {
			t.Fatalf("expected %s to outrank %s", order[i], order[i+1])
		}
	}
}

func TestDominates(t *testing.T) {
	cases := []struct {
		a, b entities.Role
		want bool
	}{
		{entities.RoleSuperAdmin, entities.RoleAdmin, true},
		{entities.RoleAdmin, entities.RoleModerator, true},
		{entities.RoleModerator, entities.RoleModerator, true},
		{entities.RoleModerator, entities.RoleAdmin, false},
		{entities.RoleGuardian, entities.RoleShop, true},
		{entities.RoleCaregiver, entities.RoleAgency, false},
	}
	for _, tc := range cases {
		got, err := Dominates(tc.a, tc.b)
		if err != nil {
			t.Fatalf("dominates(%s, %s): %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Fatalf("dominates(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestUnknownRoleFails(t *testing.T) {
	if _, err := Rank(entities.Role("intern")); !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
	if _, err := Dominates(entities.RoleAdmin, entities.Role("intern")); !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}
