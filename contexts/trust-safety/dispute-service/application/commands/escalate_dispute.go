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

type EscalateDisputeInput struct {
	Actor     ports.Actor
	DisputeID string
	Notes     string
}

// EscalateDisputeUseCase hands a dispute from the assigned moderator to the
// admin tier. Escalation notes are mandatory; the admin decides on the
// moderator's written summary, not on a fresh investigation.
type EscalateDisputeUseCase struct {
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

func (u EscalateDisputeUseCase) Execute(ctx context.Context, input EscalateDisputeInput) (entities.Dispute, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(input.DisputeID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: dispute id is required", domainerrors.ErrValidation)
	}
	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return entities.Dispute{}, fmt.Errorf("%w: escalation notes are required", domainerrors.ErrValidation)
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
	if dispute.Status != entities.DisputeStatusUnderReview {
		return entities.Dispute{}, fmt.Errorf("%w: cannot escalate from status %q", domainerrors.ErrInvalidTransition, dispute.Status)
	}
	if dispute.ModeratorID != "" && dispute.ModeratorID != input.Actor.ID {
		return entities.Dispute{}, domainerrors.ErrNotAssignedModerator
	}

	now := u.Clock.Now().UTC()
	prior := dispute.Status
	expectedVersion := dispute.Version

	dispute.Status = entities.DisputeStatusEscalated
	dispute.EscalationNotes = notes
	dispute.EscalatedAt = &now
	dispute.UpdatedAt = now
	dispute.Version = expectedVersion + 1

	entry := audit.Entry{
		EntryID:     u.IDs.NewID(),
		ActorID:     input.Actor.ID,
		ActorRole:   input.Actor.Role,
		Action:      "dispute_escalated",
		EntityType:  "dispute",
		EntityID:    dispute.DisputeID,
		PriorStatus: string(prior),
		NewStatus:   string(dispute.Status),
		Reason:      notes,
		OccurredAt:  now,
	}
	if err := u.Repository.SaveDispute(ctx, dispute, expectedVersion, entry); err != nil {
		return entities.Dispute{}, fmt.Errorf("save dispute: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("dispute", string(prior), string(dispute.Status))
	}
	logger.Info("dispute escalated",
		"event", "dispute_escalated",
		"module", "trust-safety/dispute-service",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"moderator_id", input.Actor.ID,
		"severity", string(dispute.Severity),
	)
	publishDisputeEvent(ctx, u.Publisher, logger, u.IDs, "dispute.escalated", dispute, now)

	return dispute, nil
}
