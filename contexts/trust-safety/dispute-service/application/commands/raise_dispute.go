package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carebridge/contexts/trust-safety/dispute-service/application"
	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
)

type RaiseDisputeInput struct {
	Actor          ports.Actor
	Type           entities.DisputeType
	JobID          string
	AgainstID      string
	Description    string
	Evidence       []string
	Amount         decimal.Decimal
	JobCompletedAt time.Time
}

// RaiseDisputeUseCase opens a dispute about a completed job. Severity is
// derived from the type and fixed for the dispute's lifetime. Payment
// disputes must be raised inside the window after job completion.
type RaiseDisputeUseCase struct {
	Repository    ports.Repository
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Gate          ports.AccessGate
	Publisher     ports.NotificationPublisher
	Metrics       ports.Metrics
	PaymentWindow time.Duration
	EscrowHold    time.Duration
	Logger        *slog.Logger
}

func (u RaiseDisputeUseCase) Execute(ctx context.Context, input RaiseDisputeInput) (entities.Dispute, error) {
	logger := application.ResolveLogger(u.Logger)

	if !entities.ValidDisputeType(input.Type) {
		return entities.Dispute{}, fmt.Errorf("%w: type %q is not a known dispute type", domainerrors.ErrValidation, input.Type)
	}
	if strings.TrimSpace(input.JobID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: job id is required", domainerrors.ErrValidation)
	}
	if strings.TrimSpace(input.AgainstID) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: against party is required", domainerrors.ErrValidation)
	}
	if strings.TrimSpace(input.AgainstID) == strings.TrimSpace(input.Actor.ID) {
		return entities.Dispute{}, fmt.Errorf("%w: a dispute cannot be raised against oneself", domainerrors.ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return entities.Dispute{}, fmt.Errorf("%w: description is required", domainerrors.ErrValidation)
	}
	if input.Type == entities.DisputeTypePayment && !input.Amount.IsPositive() {
		return entities.Dispute{}, fmt.Errorf("%w: payment disputes require a positive amount", domainerrors.ErrValidation)
	}

	decision, err := u.Gate.Authorize(ctx, input.Actor, "dispute", "write", input.Actor.ID)
	if err != nil {
		return entities.Dispute{}, fmt.Errorf("authorize dispute raise: %w", err)
	}
	if !decision.Allowed {
		return entities.Dispute{}, domainerrors.ErrForbidden
	}

	now := u.Clock.Now().UTC()
	if input.Type == entities.DisputeTypePayment && u.PaymentWindow > 0 && !input.JobCompletedAt.IsZero() {
		if now.After(input.JobCompletedAt.UTC().Add(u.PaymentWindow)) {
			return entities.Dispute{}, domainerrors.ErrDisputeWindowClosed
		}
	}

	dispute := entities.Dispute{
		DisputeID:   u.IDGenerator.NewID(),
		Type:        input.Type,
		Severity:    entities.SeverityFor(input.Type),
		JobID:       strings.TrimSpace(input.JobID),
		RaisedByID:  strings.TrimSpace(input.Actor.ID),
		AgainstID:   strings.TrimSpace(input.AgainstID),
		Description: strings.TrimSpace(input.Description),
		Evidence:    normalizeEvidence(input.Evidence),
		Amount:      input.Amount,
		Status:      entities.DisputeStatusOpen,
		Version:     1,
		RaisedAt:    now,
		UpdatedAt:   now,
	}
	// The cooling-off window starts when the dispute opens, so even an
	// immediate resolution cannot move funds before the hold elapses.
	if dispute.Type == entities.DisputeTypePayment && u.EscrowHold > 0 {
		holdUntil := now.Add(u.EscrowHold)
		dispute.EscrowHoldUntil = &holdUntil
	}

	entry := audit.Entry{
		EntryID:    u.IDGenerator.NewID(),
		ActorID:    input.Actor.ID,
		ActorRole:  input.Actor.Role,
		Action:     "dispute_raised",
		EntityType: "dispute",
		EntityID:   dispute.DisputeID,
		NewStatus:  string(entities.DisputeStatusOpen),
		Reason:     dispute.Description,
		OccurredAt: now,
	}
	if err := u.Repository.CreateDispute(ctx, dispute, entry); err != nil {
		return entities.Dispute{}, fmt.Errorf("create dispute: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("dispute", "", string(entities.DisputeStatusOpen))
	}
	logger.Info("dispute raised",
		"event", "dispute_raised",
		"module", "trust-safety/dispute-service",
		"layer", "application",
		"dispute_id", dispute.DisputeID,
		"dispute_type", string(dispute.Type),
		"severity", string(dispute.Severity),
		"job_id", dispute.JobID,
		"raised_by_id", dispute.RaisedByID,
	)
	publishDisputeEvent(ctx, u.Publisher, logger, u.IDGenerator, "dispute.raised", dispute, now)

	return dispute, nil
}

func normalizeEvidence(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		trimmed := strings.TrimSpace(ref)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
