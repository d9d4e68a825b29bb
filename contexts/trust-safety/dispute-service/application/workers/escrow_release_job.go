package workers

import (
	"context"
	"log/slog"
	"time"

	"carebridge/contexts/trust-safety/dispute-service/application"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/events"
)

// EscrowReleaseJob releases held funds for resolved payment disputes whose
// hold window has elapsed. It is the only writer of FundsReleased; the
// version guard on SaveDispute makes a racing transition lose cleanly.
type EscrowReleaseJob struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Publisher  ports.NotificationPublisher
	BatchSize  int
	Disabled   bool
	Logger     *slog.Logger
}

func (j EscrowReleaseJob) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	if j.Disabled {
		logger.Info("escrow release job disabled by feature flag",
			"event", "escrow_release_disabled",
			"module", "trust-safety/dispute-service",
			"layer", "worker",
		)
		return nil
	}
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	items, err := j.Repository.ListDueEscrowRelease(ctx, now, limit)
	if err != nil {
		logger.Error("escrow release list failed",
			"event", "escrow_release_list_failed",
			"module", "trust-safety/dispute-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, dispute := range items {
		if !dispute.FundsReleasable(now) {
			continue
		}
		expectedVersion := dispute.Version
		dispute.FundsReleased = true
		dispute.UpdatedAt = now
		dispute.Version = expectedVersion + 1

		entry := audit.Entry{
			EntryID:     j.IDs.NewID(),
			ActorID:     "system",
			ActorRole:   "system",
			Action:      "escrow_released",
			EntityType:  "dispute",
			EntityID:    dispute.DisputeID,
			PriorStatus: string(dispute.Status),
			NewStatus:   string(dispute.Status),
			Reason:      "hold window elapsed",
			OccurredAt:  now,
		}
		if err := j.Repository.SaveDispute(ctx, dispute, expectedVersion, entry); err != nil {
			logger.Error("escrow release save failed",
				"event", "escrow_release_save_failed",
				"module", "trust-safety/dispute-service",
				"layer", "worker",
				"dispute_id", dispute.DisputeID,
				"error", err.Error(),
			)
			continue
		}

		logger.Info("escrow released",
			"event", "escrow_released",
			"module", "trust-safety/dispute-service",
			"layer", "worker",
			"dispute_id", dispute.DisputeID,
			"amount", dispute.Amount.String(),
		)
		if j.Publisher != nil {
			envelope := events.Envelope{
				EventID:        j.IDs.NewID(),
				EventType:      "dispute.escrow_released",
				SourceService:  "dispute-service",
				OccurredAtUTC:  now,
				EntityType:     "dispute",
				EntityID:       dispute.DisputeID,
				PayloadVersion: 1,
				Payload: map[string]any{
					"dispute_id": dispute.DisputeID,
					"job_id":     dispute.JobID,
					"amount":     dispute.Amount.String(),
					"resolution": string(dispute.Resolution),
				},
			}
			if err := j.Publisher.Publish(ctx, envelope); err != nil {
				logger.Warn("notification publish failed",
					"event", "dispute_notify_failed",
					"module", "trust-safety/dispute-service",
					"layer", "worker",
					"dispute_id", dispute.DisputeID,
					"error", err.Error(),
				)
			}
		}
	}
	return nil
}
