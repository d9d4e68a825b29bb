package authz

import (
	"context"

	authzapp "carebridge/contexts/identity-access/authorization-service/application"
	authzentities "carebridge/contexts/identity-access/authorization-service/domain/entities"
	authzservices "carebridge/contexts/identity-access/authorization-service/domain/services"
	"carebridge/contexts/trust-safety/verification-service/ports"
)

// Gate adapts the authorization context's use case to this context's
// AccessGate port so the workflow never imports across contexts directly.
type Gate struct {
	Authorizer authzapp.AuthorizeUseCase
}

func (g Gate) Authorize(ctx context.Context, actor ports.Actor, resource, action, ownerID string) (ports.AccessDecision, error) {
	linked := make(map[string]struct{}, len(actor.Linked))
	for _, id := range actor.Linked {
		linked[id] = struct{}{}
	}
	decision := g.Authorizer.Execute(ctx, authzapp.AuthorizeRequest{
		Identity: authzentities.Identity{
			ID:     actor.ID,
			Role:   authzentities.Role(actor.Role),
			Linked: linked,
		},
		Resource: authzservices.Resource(resource),
		Action:   authzservices.Action(action),
		OwnerID:  ownerID,
	})
	return ports.AccessDecision{Allowed: decision.Allowed, Reason: decision.Reason}, nil
}

func (g Gate) Dominates(role, over string) (bool, error) {
	return authzservices.Dominates(authzentities.Role(role), authzentities.Role(over))
}
