package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authzapp "carebridge/contexts/identity-access/authorization-service/application"
	"carebridge/contexts/trust-safety/verification-service/adapters/authz"
	memoryadapter "carebridge/contexts/trust-safety/verification-service/adapters/memory"
	"carebridge/contexts/trust-safety/verification-service/application/commands"
	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/locking"
)

var (
	agencyActor    = ports.Actor{ID: "agency-1", Role: "agency"}
	moderatorActor = ports.Actor{ID: "moderator-1", Role: "moderator"}
	adminActor     = ports.Actor{ID: "admin-1", Role: "admin"}
)

type workflowFixture struct {
	store     *memoryadapter.Store
	sink      *audit.MemorySink
	create    commands.CreateSubmissionUseCase
	recommend commands.RecommendSubmissionUseCase
	decide    commands.DecideSubmissionUseCase
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	store := memoryadapter.NewStore().WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	})
	sink := audit.NewMemorySink()
	gate := authz.Gate{Authorizer: authzapp.AuthorizeUseCase{Audit: sink}}
	locks := locking.NewKeyedLocks()

	return &workflowFixture{
		store: store,
		sink:  sink,
		create: commands.CreateSubmissionUseCase{
			Repository:  store,
			Clock:       store,
			IDGenerator: store,
			Gate:        gate,
		},
		recommend: commands.RecommendSubmissionUseCase{
			Repository: store,
			Clock:      store,
			Gate:       gate,
			Locks:      locks,
			LockWait:   time.Second,
			IDs:        store,
		},
		decide: commands.DecideSubmissionUseCase{
			Repository: store,
			Clock:      store,
			Gate:       gate,
			Locks:      locks,
			LockWait:   time.Second,
			IDs:        store,
		},
	}
}

func (f *workflowFixture) mustCreate(t *testing.T, actor ports.Actor, submissionType entities.SubmissionType) entities.Submission {
	t.Helper()
	submission, err := f.create.Execute(context.Background(), commands.CreateSubmissionInput{
		Actor: actor,
		Type:  submissionType,
	})
	require.NoError(t, err)
	return submission
}

func TestSubmissionOverrideReject(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)
	require.Equal(t, entities.SubmissionStatusPending, submission.Status)
	require.EqualValues(t, 1, submission.Version)

	reviewed, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.NoError(t, err)
	require.Equal(t, entities.SubmissionStatusModeratorReviewed, reviewed.Status)
	require.Equal(t, moderatorActor.ID, reviewed.ModeratorID)

	decided, err := fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: submission.SubmissionID,
		Decision:     entities.AdminDecisionOverrideReject,
		Feedback:     "docs expired",
	})
	require.NoError(t, err)
	require.Equal(t, entities.SubmissionStatusRejected, decided.Status)
	require.Equal(t, entities.RecommendationApprove, decided.Recommendation)
	require.Equal(t, "docs expired", decided.AdminFeedback)
	require.NotNil(t, decided.DecidedAt)
	require.EqualValues(t, 3, decided.Version)

	trail := fixture.store.AuditTrail()
	require.Len(t, trail, 3)
	require.Equal(t, "admin_decided_override_reject", trail[2].Action)
	require.Equal(t, string(entities.SubmissionStatusModeratorReviewed), trail[2].PriorStatus)
	require.Equal(t, string(entities.SubmissionStatusRejected), trail[2].NewStatus)
	require.Equal(t, "docs expired", trail[2].Reason)
}

func TestSubmissionSendBackReopensSameRecord(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyPhysical)

	_, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationReject,
		Notes:          "photo blurry",
	})
	require.NoError(t, err)

	reopened, err := fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: submission.SubmissionID,
		Decision:     entities.AdminDecisionSendBack,
		Feedback:     "ask for a new photo",
	})
	require.NoError(t, err)
	require.Equal(t, submission.SubmissionID, reopened.SubmissionID)
	require.Equal(t, entities.SubmissionStatusPending, reopened.Status)
	require.Equal(t, 1, reopened.ReviewCycle)
	require.Empty(t, reopened.Recommendation)
	require.Nil(t, reopened.ReviewedAt)
	require.Equal(t, moderatorActor.ID, reopened.ModeratorID)

	// The reopened record goes through both tiers again.
	_, err = fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.NoError(t, err)
	approved, err := fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: submission.SubmissionID,
		Decision:     entities.AdminDecisionApprove,
	})
	require.NoError(t, err)
	require.Equal(t, entities.SubmissionStatusApproved, approved.Status)
	require.Equal(t, 1, approved.ReviewCycle)
}

func TestSubmissionAdminCannotSkipModeratorTier(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	_, err := fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: submission.SubmissionID,
		Decision:     entities.AdminDecisionApprove,
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestSubmissionFeedbackRequiredForSendBack(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeCaregiverCertificate)
	_, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.NoError(t, err)

	_, err = fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: submission.SubmissionID,
		Decision:     entities.AdminDecisionSendBack,
		Feedback:     "   ",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	current, err := fixture.store.GetSubmission(context.Background(), submission.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, entities.SubmissionStatusModeratorReviewed, current.Status)
}

func TestSubmissionRejectRecommendationNeedsNotes(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeCaregiverInterview)

	_, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationReject,
		Notes:          "  ",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSubmissionClaimedByFirstModerator(t *testing.T) {
	fixture := newWorkflowFixture(t)
	first := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	// Send back so the record is pending again with a claimed moderator.
	_, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   first.SubmissionID,
		Recommendation: entities.RecommendationReject,
		Notes:          "missing pages",
	})
	require.NoError(t, err)
	_, err = fixture.decide.Execute(context.Background(), commands.DecideSubmissionInput{
		Actor:        adminActor,
		SubmissionID: first.SubmissionID,
		Decision:     entities.AdminDecisionSendBack,
		Feedback:     "resubmit all pages",
	})
	require.NoError(t, err)

	other := ports.Actor{ID: "moderator-2", Role: "moderator"}
	_, err = fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          other,
		SubmissionID:   first.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.ErrorIs(t, err, domainerrors.ErrNotAssignedModerator)
}

func TestSubmissionSubmitterCannotRecommend(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	_, err := fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          agencyActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	// The denial shows up in the audit trail with the failing actor.
	entries := fixture.sink.Entries()
	require.NotEmpty(t, entries)
	require.Equal(t, agencyActor.ID, entries[len(entries)-1].ActorID)
}

func TestSubmissionDuplicateOpenRejected(t *testing.T) {
	fixture := newWorkflowFixture(t)
	fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	_, err := fixture.create.Execute(context.Background(), commands.CreateSubmissionInput{
		Actor: agencyActor,
		Type:  entities.SubmissionTypeAgencyLegalDocs,
	})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateSubmission)

	// A different type stays open in parallel.
	fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyPhysical)
}

func TestSubmissionStaleVersionConflicts(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	stale := submission
	stale.Status = entities.SubmissionStatusModeratorReviewed
	stale.Version = submission.Version + 1
	err := fixture.store.SaveSubmission(context.Background(), stale, submission.Version-1, audit.Entry{})
	require.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestSubmissionLockedRecordReturnsBusy(t *testing.T) {
	fixture := newWorkflowFixture(t)
	submission := fixture.mustCreate(t, agencyActor, entities.SubmissionTypeAgencyLegalDocs)

	locks := locking.NewKeyedLocks()
	fixture.recommend.Locks = locks
	fixture.recommend.LockWait = 50 * time.Millisecond

	release, err := locks.Acquire(context.Background(), "submission:"+submission.SubmissionID, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = fixture.recommend.Execute(context.Background(), commands.RecommendSubmissionInput{
		Actor:          moderatorActor,
		SubmissionID:   submission.SubmissionID,
		Recommendation: entities.RecommendationApprove,
	})
	require.ErrorIs(t, err, domainerrors.ErrBusy)
}
