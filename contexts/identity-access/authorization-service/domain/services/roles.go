package services

import (
	"fmt"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "carebridge/contexts/identity-access/authorization-service/domain/errors"
)

// Role ranks. Higher rank dominates lower. Agencies sit above the individual
// marketplace roles; caregivers, guardians and shops share the lowest tier.
var roleRanks = map[entities.Role]int{
	entities.RoleSuperAdmin: 6,
	entities.RoleAdmin:      5,
	entities.RoleModerator:  4,
	entities.RoleAgency:     3,
	entities.RoleCaregiver:  2,
	entities.RoleGuardian:   2,
	entities.RoleShop:       2,
}

// Rank returns the fixed integer rank of a role.
func Rank(role entities.Role) (int, error) {
	rank, ok := roleRanks[role]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domainerrors.ErrUnknownRole, role)
	}
	return rank, nil
}

// Dominates reports whether role a ranks at or above role b.
func Dominates(a, b entities.Role) (bool, error) {
	rankA, err := Rank(a)
	if err != nil {
		return false, err
	}
	rankB, err := Rank(b)
	if err != nil {
		return false, err
	}
	return rankA >= rankB, nil
}
