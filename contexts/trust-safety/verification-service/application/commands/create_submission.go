package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"carebridge/contexts/trust-safety/verification-service/application"
	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/audit"
)

type CreateSubmissionInput struct {
	Actor ports.Actor
	Type  entities.SubmissionType
}

// CreateSubmissionUseCase opens a new verification submission for the
// acting submitter. The repository rejects a second open submission of the
// same type for the same submitter.
type CreateSubmissionUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Gate        ports.AccessGate
	Publisher   ports.NotificationPublisher
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

func (u CreateSubmissionUseCase) Execute(ctx context.Context, input CreateSubmissionInput) (entities.Submission, error) {
	logger := application.ResolveLogger(u.Logger)

	if !entities.ValidSubmissionType(input.Type) {
		return entities.Submission{}, fmt.Errorf("%w: type %q is not a known submission type", domainerrors.ErrValidation, input.Type)
	}
	if strings.TrimSpace(input.Actor.ID) == "" {
		return entities.Submission{}, fmt.Errorf("%w: actor id is required", domainerrors.ErrValidation)
	}

	decision, err := u.Gate.Authorize(ctx, input.Actor, "submission", "write", input.Actor.ID)
	if err != nil {
		return entities.Submission{}, fmt.Errorf("authorize submission create: %w", err)
	}
	if !decision.Allowed {
		return entities.Submission{}, domainerrors.ErrForbidden
	}

	now := u.Clock.Now().UTC()
	submission := entities.Submission{
		SubmissionID: u.IDGenerator.NewID(),
		Type:         input.Type,
		SubmitterID:  input.Actor.ID,
		Status:       entities.SubmissionStatusPending,
		ReviewCycle:  0,
		Version:      1,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}

	entry := audit.Entry{
		EntryID:    u.IDGenerator.NewID(),
		ActorID:    input.Actor.ID,
		ActorRole:  input.Actor.Role,
		Action:     "submission_created",
		EntityType: "submission",
		EntityID:   submission.SubmissionID,
		NewStatus:  string(entities.SubmissionStatusPending),
		OccurredAt: now,
	}
	if err := u.Repository.CreateSubmission(ctx, submission, entry); err != nil {
		return entities.Submission{}, fmt.Errorf("create submission: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("submission", "", string(entities.SubmissionStatusPending))
	}
	logger.Info("submission created",
		"event", "submission_created",
		"module", "trust-safety/verification-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"submission_type", string(submission.Type),
		"submitter_id", submission.SubmitterID,
	)
	publishSubmissionEvent(ctx, u.Publisher, logger, u.IDGenerator, "submission.created", submission, now)

	return submission, nil
}
