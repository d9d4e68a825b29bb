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

type DecideSubmissionInput struct {
	Actor        ports.Actor
	SubmissionID string
	Decision     entities.AdminDecision
	Feedback     string
}

// DecideSubmissionUseCase records the binding admin decision. Approve and
// override-reject are terminal. Send-back returns the same record to
// pending with the review cycle incremented, clearing the moderator
// recommendation but keeping the moderator assignment.
type DecideSubmissionUseCase struct {
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

func (u DecideSubmissionUseCase) Execute(ctx context.Context, input DecideSubmissionInput) (entities.Submission, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(input.SubmissionID) == "" {
		return entities.Submission{}, fmt.Errorf("%w: submission id is required", domainerrors.ErrValidation)
	}
	switch input.Decision {
	case entities.AdminDecisionApprove, entities.AdminDecisionSendBack, entities.AdminDecisionOverrideReject:
	default:
		return entities.Submission{}, fmt.Errorf("%w: decision %q is not valid", domainerrors.ErrValidation, input.Decision)
	}
	feedback := strings.TrimSpace(input.Feedback)
	if input.Decision != entities.AdminDecisionApprove && feedback == "" {
		return entities.Submission{}, fmt.Errorf("%w: feedback is required for decision %q", domainerrors.ErrValidation, input.Decision)
	}

	if err := requireTier(ctx, u.Gate, input.Actor, "admin"); err != nil {
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
	if submission.Status != entities.SubmissionStatusModeratorReviewed {
		return entities.Submission{}, fmt.Errorf("%w: cannot decide from status %q", domainerrors.ErrInvalidTransition, submission.Status)
	}

	now := u.Clock.Now().UTC()
	prior := submission.Status
	expectedVersion := submission.Version

	var eventType string
	switch input.Decision {
	case entities.AdminDecisionApprove:
		submission.Status = entities.SubmissionStatusApproved
		submission.DecidedAt = &now
		eventType = "submission.approved"
	case entities.AdminDecisionSendBack:
		submission.Status = entities.SubmissionStatusPending
		submission.ReviewCycle++
		submission.Recommendation = ""
		submission.ReviewedAt = nil
		eventType = "submission.sent_back"
	case entities.AdminDecisionOverrideReject:
		submission.Status = entities.SubmissionStatusRejected
		submission.DecidedAt = &now
		eventType = "submission.rejected"
	}
	submission.AdminDecision = input.Decision
	submission.AdminFeedback = feedback
	submission.UpdatedAt = now
	submission.Version = expectedVersion + 1

	entry := audit.Entry{
		EntryID:     u.IDs.NewID(),
		ActorID:     input.Actor.ID,
		ActorRole:   input.Actor.Role,
		Action:      "admin_decided_" + string(input.Decision),
		EntityType:  "submission",
		EntityID:    submission.SubmissionID,
		PriorStatus: string(prior),
		NewStatus:   string(submission.Status),
		Reason:      feedback,
		OccurredAt:  now,
	}
	if err := u.Repository.SaveSubmission(ctx, submission, expectedVersion, entry); err != nil {
		return entities.Submission{}, fmt.Errorf("save submission: %w", err)
	}

	if u.Metrics != nil {
		u.Metrics.IncWorkflowTransition("submission", string(prior), string(submission.Status))
	}
	logger.Info("admin decision recorded",
		"event", "submission_admin_decided",
		"module", "trust-safety/verification-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"admin_id", input.Actor.ID,
		"decision", string(input.Decision),
		"new_status", string(submission.Status),
		"review_cycle", submission.ReviewCycle,
	)
	publishSubmissionEvent(ctx, u.Publisher, logger, u.IDs, eventType, submission, now)

	return submission, nil
}
