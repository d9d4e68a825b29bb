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

type ResolveDisputeInput struct {
	Actor      ports.Actor
	DisputeID  string
	Resolution entities.Resolution
	Notes      string
}

// ResolveDisputeUseCase records the resolution. The required tier follows
// the dispute's current status: under review the assigned moderator may
// resolve, unless severity requires escalation; escalated disputes only an
// admin may resolve. Resolution alone does not release payment funds; the
// escrow hold set when the dispute was raised must also have elapsed.
type ResolveDisputeUseCase struct {
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

func (u ResolveDisputeUseCase) Execute(ctx context.Context, input ResolveDisputeInput) (entities.Dispute, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(input.DisputeID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: dispute id is required", domainerrors.ErrValidation)
	}
	if !entities.ValidResolution(input.Resolution) {
		return entities.Dispute{}, fmt.Errorf("%w: resolution %q is not valid", domainerrors.ErrValidation, input.Resolution)
	}
	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return entities.Dispute{}, fmt.Errorf("%w: resolution notes are required", domainerrors.ErrValidation)
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

	var action string
	switch dispute.Status {
	case entities.DisputeStatusUnderReview:
		if err := requireTier(ctx, u.Gate, input.Actor, "moderator"); err != nil {
			return entities.Dispute{}, err
		}
		if dispute.ModeratorID != "" && dispute.ModeratorID != input.Actor.ID {
			return entities.Dispute{}, domainerrors.ErrNotAssignedModerator
		}
		// Admins acting at this stage still cannot shortcut the severity
		// rule; a high-severity dispute goes through escalation on record.
		if dispute.Severity.EscalationRequired() {
			return entities.Dispute{}, domainerrors.ErrEscalationRequired
		}
		action = "dispute_resolved_by_moderator"
	case entities.DisputeStatusEscalated:
		if err := requireTier(ctx, u.Gate, input.Actor, "admin"); err != nil {
			return entities.Dispute{}, err
		}
		action = "dispute_resolved_by_admin"
	default:
		return entities.Dispute{}, fmt.Errorf("%w: cannot resolve from status %q", domainerrors.ErrInvalidTransition, dispute.Status)
	}

	now := u.Clock.Now().UTC()
	prior := dispute.Status
	expectedVersion := dispute.Version

	dispute.Status = entities.DisputeStatusResolved
	dispute.Resolution = input.Resolution
	dispute.ResolutionNotes = notes
	dispute.ResolvedByID = input.Actor.ID
	dispute.ResolvedAt = &now
	dispute.UpdatedAt = now
	dispute.Version = expectedVersion + 1

	entry := audit.Entry{
		EntryID:     u.IDs.NewID(),
		ActorID:     input.Actor.ID,
		ActorRole:   input.Actor.Role,
		Action:      action,
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
	logger.Info("dispute resolved",
		"event", "dispute_resolved",
		"module", "trust-safety/dispute-service",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"resolved_by_id", input.Actor.ID,
		"resolution", string(input.Resolution),
		"escrow_hold", dispute.EscrowHoldUntil != nil,
	)
	publishDisputeEvent(ctx, u.Publisher, logger, u.IDs, "dispute.resolved", dispute, now)

	return dispute, nil
}
