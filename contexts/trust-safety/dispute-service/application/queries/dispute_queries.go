package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
)

// DisputeQueries answers reads with the same gate the commands use. A
// party to the dispute may read it through the own-only grant; roles with
// a full grant see everything.
type DisputeQueries struct {
	Repository ports.Repository
	Gate       ports.AccessGate
	Logger     *slog.Logger
}

func (q DisputeQueries) GetDispute(ctx context.Context, actor ports.Actor, disputeID string) (entities.Dispute, error) {
	if strings.TrimSpace(disputeID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: dispute id is required", domainerrors.ErrValidation)
	}
	dispute, err := q.Repository.GetDispute(ctx, disputeID)
	if err != nil {
		return entities.Dispute{}, err
	}

	full, err := q.Gate.Authorize(ctx, actor, "dispute", "read", "")
	if err != nil {
		return entities.Dispute{}, fmt.Errorf("authorize dispute read: %w", err)
	}
	if full.Allowed {
		return dispute, nil
	}
	for _, ownerID := range []string{dispute.RaisedByID, dispute.AgainstID} {
		own, err := q.Gate.Authorize(ctx, actor, "dispute", "read", ownerID)
		if err != nil {
			return entities.Dispute{}, fmt.Errorf("authorize dispute read: %w", err)
		}
		if own.Allowed {
			return dispute, nil
		}
	}
	return entities.Dispute{}, domainerrors.ErrForbidden
}

func (q DisputeQueries) ListDisputes(ctx context.Context, actor ports.Actor, filter ports.ListFilter) ([]entities.Dispute, error) {
	decision, err := q.Gate.Authorize(ctx, actor, "dispute", "read", "")
	if err != nil {
		return nil, fmt.Errorf("authorize dispute list: %w", err)
	}
	if !decision.Allowed {
		own, err := q.Gate.Authorize(ctx, actor, "dispute", "read", actor.ID)
		if err != nil {
			return nil, fmt.Errorf("authorize dispute list: %w", err)
		}
		if !own.Allowed {
			return nil, domainerrors.ErrForbidden
		}
		filter.RaisedByID = actor.ID
	}
	return q.Repository.ListDisputes(ctx, filter)
}
