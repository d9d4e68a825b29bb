package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "carebridge/contexts/identity-access/authorization-service/domain/errors"
)

// Claims is the bearer token payload: subject id, marketplace role and the
// linkage set (patient ids for guardians, agency id for caregivers).
type Claims struct {
	Role  string   `json:"role"`
	Links []string `json:"links,omitempty"`
	jwt.RegisteredClaims
}

// Resolver turns a bearer credential into an Identity. Identity resolution
// happens once per request; the result is immutable for that request.
type Resolver struct {
	secret []byte
}

func NewResolver(secret []byte) (*Resolver, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret is required")
	}
	return &Resolver{secret: secret}, nil
}

// Resolve parses and verifies the token and returns the caller identity.
// Any parse or verification failure maps to ErrUnauthenticated.
func (r *Resolver) Resolve(raw string) (entities.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entities.Identity{}, domainerrors.ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return entities.Identity{}, domainerrors.ErrUnauthenticated
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.Role) == "" {
		return entities.Identity{}, domainerrors.ErrUnauthenticated
	}

	linked := make(map[string]struct{}, len(claims.Links))
	for _, id := range claims.Links {
		id = strings.TrimSpace(id)
		if id != "" {
			linked[id] = struct{}{}
		}
	}
	return entities.Identity{
		ID:     claims.Subject,
		Role:   entities.Role(claims.Role),
		Linked: linked,
	}, nil
}
