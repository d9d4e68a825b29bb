package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
)

// SubmissionQueries answers reads with the same gate the commands use.
// Roles with an own-only grant get results silently scoped to their own
// submissions instead of an error.
type SubmissionQueries struct {
	Repository ports.Repository
	Gate       ports.AccessGate
	Logger     *slog.Logger
}

func (q SubmissionQueries) GetSubmission(ctx context.Context, actor ports.Actor, submissionID string) (entities.Submission, error) {
	if strings.TrimSpace(submissionID) == "" {
		return entities.Submission{}, fmt.Errorf("%w: submission id is required", domainerrors.ErrValidation)
	}
	submission, err := q.Repository.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	decision, err := q.Gate.Authorize(ctx, actor, "submission", "read", submission.SubmitterID)
	if err != nil {
		return entities.Submission{}, fmt.Errorf("authorize submission read: %w", err)
	}
	if !decision.Allowed {
		return entities.Submission{}, domainerrors.ErrForbidden
	}
	return submission, nil
}

func (q SubmissionQueries) ListSubmissions(ctx context.Context, actor ports.Actor, filter ports.ListFilter) ([]entities.Submission, error) {
	decision, err := q.Gate.Authorize(ctx, actor, "submission", "read", "")
	if err != nil {
		return nil, fmt.Errorf("authorize submission list: %w", err)
	}
	if !decision.Allowed {
		own, err := q.Gate.Authorize(ctx, actor, "submission", "read", actor.ID)
		if err != nil {
			return nil, fmt.Errorf("authorize submission list: %w", err)
		}
		if !own.Allowed {
			return nil, domainerrors.ErrForbidden
		}
		filter.SubmitterID = actor.ID
	}
	return q.Repository.ListSubmissions(ctx, filter)
}
