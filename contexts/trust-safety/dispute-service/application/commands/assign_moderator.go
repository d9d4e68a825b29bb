package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carebridge/contexts/trust-safety/dispute-service/application"
	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/locking"
)

type AssignModeratorInput struct {
	Actor     ports.Actor
	DisputeID string
}

// AssignModeratorUseCase moves an open dispute under review. The acting
// moderator claims the dispute; it stays theirs until resolution or
// escalation.
type AssignModeratorUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	Gate       ports.AccessGate
	Locks      *locking.KeyedLocks
	LockWait   time.Duration
	Publisher  ports.NotificationPublisher
	IDs        ports.IDGenerator
	Metrics    ports.Metrics
	Logger     *slog.Logger
}

func (u AssignModeratorUseCase) Execute(ctx context.Context, input AssignModeratorInput) (entities.Dispute, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(input.DisputeID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: dispute id is required", domainerrors.ErrValidation)
	}
	if err := requireTier(ctx, u.Gate, input.Actor, "moderator"); err != nil {
		return entities.Dispute{}, err
	}

	release, err := acquireDisputeLock(ctx, u.Locks, input.DisputeID, u.LockWait)
	if err != nil {
		return entities.Dispute{}, err
	}
	defer release()

	dispute, err := u.Repository.GetDispute(ctx, input.DisputeID)
	if err != nil {
		return entities.Dispute{}, err
	}
	if dispute.Status != entities.DisputeStatusOpen {
		return entities.Dispute{}, fmt.Errorf("%w: cannot start review from status %q", domainerrors.ErrInvalidTransition, dispute.Status)
	}

	now := u.Clock.Now().UTC()
	prior := dispute.Status
	expectedVersion := dispute.Version

	dispute.ModeratorID = input.Actor.ID
	dispute.Status = entities.DisputeStatusUnderReview
	dispute.ReviewStartedAt = &now
	dispute.UpdatedAt = now
	dispute.Version = expectedVersion + 1

	entry := audit.Entry{
		EntryID:     u.IDs.NewID(),
		ActorID:     input.Actor.ID,
		ActorRole:   input.Actor.Role,
		Action:      "dispute_review_started",
		EntityType:  "dispute",
		EntityID:    dispute.DisputeID,
		PriorStatus: string(prior),
		NewStatus:   string(dispute.Status),
		OccurredAt:  now,
	}
	if err := u.Repository.SaveDispute(ctx, dispute, expectedVersion, entry); err != nil {
		return entities.Dispute{}, fmt.Errorf("save dispute: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("dispute", string(prior), string(dispute.Status))
	}
	logger.Info("dispute review started",
		"event", "dispute_review_started",
		"module", "trust-safety/dispute-service",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"moderator_id", input.Actor.ID,
	)
	publishDisputeEvent(ctx, u.Publisher, logger, u.IDs, "dispute.review_started", dispute, now)

	return dispute, nil
}
