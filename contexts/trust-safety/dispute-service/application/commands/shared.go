package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/events"
	"carebridge/internal/shared/locking"
)

// requireTier checks the permission matrix first and the role hierarchy
// second, so callers below the tier get the same forbidden error whether
// they failed the matrix or the hierarchy.
func requireTier(ctx context.Context, gate ports.AccessGate, actor ports.Actor, tier string) error {
	decision, err := gate.Authorize(ctx, actor, "dispute", "write", "")
	if err != nil {
		return fmt.Errorf("authorize dispute write: %w", err)
	}
	if !decision.Allowed {
		return domainerrors.ErrForbidden
	}
	ok, err := gate.Dominates(actor.Role, tier)
	if err != nil {
		return domainerrors.ErrForbidden
	}
	if !ok {
		return domainerrors.ErrForbidden
	}
	return nil
}

func acquireDisputeLock(ctx context.Context, locks *locking.KeyedLocks, disputeID string, wait time.Duration) (func(), error) {
	release, err := locks.Acquire(ctx, "dispute:"+disputeID, wait)
	if err != nil {
		if errors.Is(err, locking.ErrTimeout) {
			return nil, domainerrors.ErrBusy
		}
		return nil, fmt.Errorf("acquire dispute lock: %w", err)
	}
	return release, nil
}

// publishDisputeEvent is fire-and-forget: a delivery failure is logged and
// never surfaces to the caller or rolls back the transition.
func publishDisputeEvent(ctx context.Context, publisher ports.NotificationPublisher, logger *slog.Logger, ids ports.IDGenerator, eventType string, dispute entities.Dispute, occurredAt time.Time) {
	if publisher == nil {
		return
	}
	envelope := events.Envelope{
		EventID:        ids.NewID(),
		EventType:      eventType,
		SourceService:  "dispute-service",
		OccurredAtUTC:  occurredAt,
		EntityType:     "dispute",
		EntityID:       dispute.DisputeID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"dispute_id":   dispute.DisputeID,
			"dispute_type": string(dispute.Type),
			"severity":     string(dispute.Severity),
			"job_id":       dispute.JobID,
			"raised_by_id": dispute.RaisedByID,
			"against_id":   dispute.AgainstID,
			"status":       string(dispute.Status),
		},
	}
	if err := publisher.Publish(ctx, envelope); err != nil {
		logger.Warn("notification publish failed",
			"event", "dispute_notify_failed",
			"module", "trust-safety/dispute-service",
			"layer", "application",
			"event_type", eventType,
			"dispute_id", dispute.DisputeID,
			"error", err.Error(),
		)
	}
}
