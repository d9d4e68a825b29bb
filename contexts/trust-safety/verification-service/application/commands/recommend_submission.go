package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carebridge/contexts/trust-safety/verification-service/application"
	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/locking"
)

type RecommendSubmissionInput struct {
	Actor          ports.Actor
	SubmissionID   string
	Recommendation entities.Recommendation
	Notes          string
}

// RecommendSubmissionUseCase records the first-tier moderator verdict. A
// recommendation never finalizes the submission; only an admin decision can
// move it to a terminal status. The first moderator to act claims the
// submission for the rest of the review cycle.
type RecommendSubmissionUseCase struct {
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

func (u RecommendSubmissionUseCase) Execute(ctx context.Context, input RecommendSubmissionInput) (entities.Submission, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(input.SubmissionID) == "" {
		return entities.Submission{}, fmt.Errorf("%w: submission id is required", domainerrors.ErrValidation)
	}
	switch input.Recommendation {
	case entities.RecommendationApprove, entities.RecommendationReject:
	default:
		return entities.Submission{}, fmt.Errorf("%w: recommendation %q is not valid", domainerrors.ErrValidation, input.Recommendation)
	}
	if input.Recommendation == entities.RecommendationReject && strings.TrimSpace(input.Notes) == "" {
		return entities.Submission{}, fmt.Errorf("%w: notes are required for a reject recommendation", domainerrors.ErrValidation)
	}

	if err := requireTier(ctx, u.Gate, input.Actor, "moderator"); err != nil {
		return entities.Submission{}, err
	}

	release, err := u.Locks.Acquire(ctx, "submission:"+input.SubmissionID, u.LockWait)
	if err != nil {
		if errors.Is(err, locking.ErrTimeout) {
			return entities.Submission{}, domainerrors.ErrBusy
		}
		return entities.Submission{}, fmt.Errorf("acquire submission lock: %w", err)
	}
	defer release()

	submission, err := u.Repository.GetSubmission(ctx, input.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if submission.Status != entities.SubmissionStatusPending {
		return entities.Submission{}, fmt.Errorf("%w: cannot recommend from status %q", domainerrors.ErrInvalidTransition, submission.Status)
	}
	if submission.ModeratorID != "" && submission.ModeratorID != input.Actor.ID {
		return entities.Submission{}, domainerrors.ErrNotAssignedModerator
	}

	now := u.Clock.Now().UTC()
	prior := submission.Status
	expectedVersion := submission.Version

	submission.ModeratorID = input.Actor.ID
	submission.Recommendation = input.Recommendation
	submission.ModeratorNotes = strings.TrimSpace(input.Notes)
	submission.Status = entities.SubmissionStatusModeratorReviewed
	submission.ReviewedAt = &now
	submission.UpdatedAt = now
	submission.Version = expectedVersion + 1

	entry := audit.Entry{
		EntryID:     u.IDs.NewID(),
		ActorID:     input.Actor.ID,
		ActorRole:   input.Actor.Role,
		Action:      "moderator_recommended_" + string(input.Recommendation),
		EntityType:  "submission",
		EntityID:    submission.SubmissionID,
		PriorStatus: string(prior),
		NewStatus:   string(submission.Status),
		Reason:      submission.ModeratorNotes,
		OccurredAt:  now,
	}
	if err := u.Repository.SaveSubmission(ctx, submission, expectedVersion, entry); err != nil {
		return entities.Submission{}, fmt.Errorf("save submission: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("submission", string(prior), string(submission.Status))
	}
	logger.Info("moderator recommendation recorded",
		"event", "submission_moderator_reviewed",
		"module", "trust-safety/verification-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"moderator_id", input.Actor.ID,
		"recommendation", string(input.Recommendation),
		"review_cycle", submission.ReviewCycle,
	)
	publishSubmissionEvent(ctx, u.Publisher, logger, u.IDs, "submission.moderator_reviewed", submission, now)

	return submission, nil
}

// requireTier checks the permission matrix first and the role hierarchy
// second, so callers below the tier get the same forbidden error whether
// they failed the matrix or the hierarchy.
func requireTier(ctx context.Context, gate ports.AccessGate, actor ports.Actor, tier string) error {
	decision, err := gate.Authorize(ctx, actor, "submission", "write", "")
	if err != nil {
		return fmt.Errorf("authorize submission write: %w", err)
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
