package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	authzapp "carebridge/contexts/identity-access/authorization-service/application"
	"carebridge/contexts/trust-safety/dispute-service/adapters/authz"
	memoryadapter "carebridge/contexts/trust-safety/dispute-service/adapters/memory"
	"carebridge/contexts/trust-safety/dispute-service/application/commands"
	"carebridge/contexts/trust-safety/dispute-service/application/workers"
	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/locking"
)

var (
	guardianActor  = ports.Actor{ID: "guardian-1", Role: "guardian"}
	moderatorActor = ports.Actor{ID: "moderator-1", Role: "moderator"}
	adminActor     = ports.Actor{ID: "admin-1", Role: "admin"}
)

type disputeFixture struct {
	store    *memoryadapter.Store
	now      time.Time
	raise    commands.RaiseDisputeUseCase
	assign   commands.AssignModeratorUseCase
	escalate commands.EscalateDisputeUseCase
	resolve  commands.ResolveDisputeUseCase
	close    commands.CloseDisputeUseCase
	release  workers.EscrowReleaseJob
}

func newDisputeFixture(t *testing.T) *disputeFixture {
	t.Helper()
	fixture := &disputeFixture{
		now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	store := memoryadapter.NewStore().WithClock(func() time.Time { return fixture.now })
	gate := authz.Gate{Authorizer: authzapp.AuthorizeUseCase{Audit: audit.NewMemorySink()}}
	locks := locking.NewKeyedLocks()

	fixture.store = store
	fixture.raise = commands.RaiseDisputeUseCase{
		Repository:    store,
		Clock:         store,
		IDGenerator:   store,
		Gate:          gate,
		PaymentWindow: 7 * 24 * time.Hour,
		EscrowHold:    48 * time.Hour,
	}
	fixture.assign = commands.AssignModeratorUseCase{
		Repository: store, Clock: store, Gate: gate,
		Locks: locks, LockWait: time.Second, IDs: store,
	}
	fixture.escalate = commands.EscalateDisputeUseCase{
		Repository: store, Clock: store, Gate: gate,
		Locks: locks, LockWait: time.Second, IDs: store,
	}
	fixture.resolve = commands.ResolveDisputeUseCase{
		Repository: store, Clock: store, Gate: gate,
		Locks: locks, LockWait: time.Second, IDs: store,
	}
	fixture.close = commands.CloseDisputeUseCase{
		Repository: store, Clock: store, Gate: gate,
		Locks: locks, LockWait: time.Second, IDs: store,
	}
	fixture.release = workers.EscrowReleaseJob{
		Repository: store, Clock: store, IDs: store,
	}
	return fixture
}

func (f *disputeFixture) mustRaise(t *testing.T, disputeType entities.DisputeType, amount decimal.Decimal) entities.Dispute {
	t.Helper()
	dispute, err := f.raise.Execute(context.Background(), commands.RaiseDisputeInput{
		Actor:          guardianActor,
		Type:           disputeType,
		JobID:          "job-1",
		AgainstID:      "caregiver-9",
		Description:    "care session went wrong",
		Evidence:       []string{"photo-1", " ", "receipt-7"},
		Amount:         amount,
		JobCompletedAt: f.now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"photo-1", "receipt-7"}, dispute.Evidence)
	return dispute
}

func TestDisputeModeratorResolvesMediumSeverity(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)
	require.Equal(t, entities.SeverityMedium, dispute.Severity)
	require.Equal(t, entities.DisputeStatusOpen, dispute.Status)

	reviewed, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor:     moderatorActor,
		DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusUnderReview, reviewed.Status)
	require.Equal(t, moderatorActor.ID, reviewed.ModeratorID)

	resolved, err := fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor:      moderatorActor,
		DisputeID:  dispute.DisputeID,
		Resolution: entities.ResolutionWarning,
		Notes:      "caregiver warned about punctuality",
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusResolved, resolved.Status)
	require.Equal(t, moderatorActor.ID, resolved.ResolvedByID)
	require.Nil(t, resolved.EscrowHoldUntil)
}

func TestDisputePaymentRequiresEscalation(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypePayment, decimal.NewFromInt(250))
	require.Equal(t, entities.SeverityHigh, dispute.Severity)
	// The cooling-off window is anchored at raise time, not resolution.
	require.NotNil(t, dispute.EscrowHoldUntil)
	require.Equal(t, fixture.now.Add(48*time.Hour), dispute.EscrowHoldUntil.UTC())

	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor:     moderatorActor,
		DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)

	_, err = fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor:      moderatorActor,
		DisputeID:  dispute.DisputeID,
		Resolution: entities.ResolutionRefund,
		Notes:      "refund the full amount",
	})
	require.ErrorIs(t, err, domainerrors.ErrEscalationRequired)

	escalated, err := fixture.escalate.Execute(context.Background(), commands.EscalateDisputeInput{
		Actor:     moderatorActor,
		DisputeID: dispute.DisputeID,
		Notes:     "contested amount above my authority",
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusEscalated, escalated.Status)

	resolved, err := fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor:      adminActor,
		DisputeID:  dispute.DisputeID,
		Resolution: entities.ResolutionRefund,
		Notes:      "refund approved after review",
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusResolved, resolved.Status)
	require.NotNil(t, resolved.EscrowHoldUntil)
	require.Equal(t, fixture.now.Add(48*time.Hour), resolved.EscrowHoldUntil.UTC())
	require.False(t, resolved.FundsReleased)
}

func TestDisputeEscalationNeedsNotes(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeSafety, decimal.Zero)
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor:     moderatorActor,
		DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)

	_, err = fixture.escalate.Execute(context.Background(), commands.EscalateDisputeInput{
		Actor:     moderatorActor,
		DisputeID: dispute.DisputeID,
		Notes:     "   ",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDisputeEscrowReleaseAfterHold(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypePayment, decimal.NewFromInt(100))
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	_, err = fixture.escalate.Execute(context.Background(), commands.EscalateDisputeInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID, Notes: "needs admin sign-off",
	})
	require.NoError(t, err)
	_, err = fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor: adminActor, DisputeID: dispute.DisputeID,
		Resolution: entities.ResolutionReleasePay, Notes: "no fault found",
	})
	require.NoError(t, err)

	// Inside the hold window nothing moves.
	fixture.now = fixture.now.Add(47 * time.Hour)
	require.NoError(t, fixture.release.RunOnce(context.Background()))
	current, err := fixture.store.GetDispute(context.Background(), dispute.DisputeID)
	require.NoError(t, err)
	require.False(t, current.FundsReleased)

	fixture.now = fixture.now.Add(2 * time.Hour)
	require.NoError(t, fixture.release.RunOnce(context.Background()))
	current, err = fixture.store.GetDispute(context.Background(), dispute.DisputeID)
	require.NoError(t, err)
	require.True(t, current.FundsReleased)

	trail := fixture.store.AuditTrail()
	require.Equal(t, "escrow_released", trail[len(trail)-1].Action)
}

func TestDisputeCloseIsIdempotent(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	_, err = fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
		Resolution: entities.ResolutionNoAction, Notes: "no evidence of poor care",
	})
	require.NoError(t, err)

	closed, err := fixture.close.Execute(context.Background(), commands.CloseDisputeInput{
		Actor: adminActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusClosed, closed.Status)

	again, err := fixture.close.Execute(context.Background(), commands.CloseDisputeInput{
		Actor: adminActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	require.Equal(t, closed.Version, again.Version)
	require.Equal(t, closed.ClosedAt, again.ClosedAt)
}

func TestDisputeDuplicateOpenRejected(t *testing.T) {
	fixture := newDisputeFixture(t)
	fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)

	_, err := fixture.raise.Execute(context.Background(), commands.RaiseDisputeInput{
		Actor:          guardianActor,
		Type:           entities.DisputeTypeQuality,
		JobID:          "job-1",
		AgainstID:      "caregiver-9",
		Description:    "raised twice by mistake",
		JobCompletedAt: fixture.now.Add(-24 * time.Hour),
	})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateDispute)
}

func TestDisputeResolvedNoLongerBlocksNewRaise(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)
	resolved, err := fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
		Resolution: entities.ResolutionWarning, Notes: "caregiver warned",
	})
	require.NoError(t, err)
	require.Equal(t, entities.DisputeStatusResolved, resolved.Status)

	// The resolved dispute may still await its final close, but it no
	// longer holds the (job, raisedBy, against) triple.
	second, err := fixture.raise.Execute(context.Background(), commands.RaiseDisputeInput{
		Actor:          guardianActor,
		Type:           entities.DisputeTypeQuality,
		JobID:          "job-1",
		AgainstID:      "caregiver-9",
		Description:    "problems continued after the warning",
		JobCompletedAt: fixture.now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.NotEqual(t, dispute.DisputeID, second.DisputeID)
	require.Equal(t, entities.DisputeStatusOpen, second.Status)
}

func TestDisputePaymentWindowClosed(t *testing.T) {
	fixture := newDisputeFixture(t)
	_, err := fixture.raise.Execute(context.Background(), commands.RaiseDisputeInput{
		Actor:          guardianActor,
		Type:           entities.DisputeTypePayment,
		JobID:          "job-2",
		AgainstID:      "caregiver-9",
		Description:    "charged for a no show",
		Amount:         decimal.NewFromInt(80),
		JobCompletedAt: fixture.now.Add(-8 * 24 * time.Hour),
	})
	require.ErrorIs(t, err, domainerrors.ErrDisputeWindowClosed)
}

func TestDisputeAssignedModeratorOnly(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)

	other := ports.Actor{ID: "moderator-2", Role: "moderator"}
	_, err = fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor: other, DisputeID: dispute.DisputeID,
		Resolution: entities.ResolutionNoAction, Notes: "not my case",
	})
	require.ErrorIs(t, err, domainerrors.ErrNotAssignedModerator)
}

func TestDisputePartiesCannotResolve(t *testing.T) {
	fixture := newDisputeFixture(t)
	dispute := fixture.mustRaise(t, entities.DisputeTypeQuality, decimal.Zero)
	_, err := fixture.assign.Execute(context.Background(), commands.AssignModeratorInput{
		Actor: moderatorActor, DisputeID: dispute.DisputeID,
	})
	require.NoError(t, err)

	_, err = fixture.resolve.Execute(context.Background(), commands.ResolveDisputeInput{
		Actor: guardianActor, DisputeID: dispute.DisputeID,
		Resolution: entities.ResolutionRefund, Notes: "give me my money back",
	})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
}
