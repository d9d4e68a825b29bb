package commands

import (
	"context"
	"log/slog"
	"time"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/events"
)

// publishSubmissionEvent is fire-and-forget: a delivery failure is logged
// and never surfaces to the caller or rolls back the transition.
func publishSubmissionEvent(ctx context.Context, publisher ports.NotificationPublisher, logger *slog.Logger, ids ports.IDGenerator, eventType string, submission entities.Submission, occurredAt time.Time) {
	if publisher == nil {
		return
	}
	envelope := events.Envelope{
		EventID:        ids.NewID(),
		EventType:      eventType,
		SourceService:  "verification-service",
		OccurredAtUTC:  occurredAt,
		EntityType:     "submission",
		EntityID:       submission.SubmissionID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"submission_id":   submission.SubmissionID,
			"submission_type": string(submission.Type),
			"submitter_id":    submission.SubmitterID,
			"status":          string(submission.Status),
			"review_cycle":    submission.ReviewCycle,
		},
	}
	if err := publisher.Publish(ctx, envelope); err != nil {
		logger.Warn("notification publish failed",
			"event", "submission_notify_failed",
			"module", "trust-safety/verification-service",
			"layer", "application",
			"event_type", eventType,
			"submission_id", submission.SubmissionID,
			"error", err.Error(),
		)
	}
}
