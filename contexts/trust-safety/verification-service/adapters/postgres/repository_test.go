package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/internal/shared/audit"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	return NewRepository(gormDB, nil), mock
}

func TestGetSubmissionNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT .* FROM "verification_submissions" WHERE submission_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"submission_id"}))

	_, err := repo.GetSubmission(context.Background(), "sub-missing")
	if !errors.Is(err, domainerrors.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveSubmissionStaleVersionConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "verification_submissions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "verification_submissions" WHERE submission_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	submission := sampleSubmission()
	submission.Version = 3
	err := repo.SaveSubmission(context.Background(), submission, 2, sampleAuditEntry())
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveSubmissionMissingRowNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "verification_submissions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "verification_submissions" WHERE submission_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := repo.SaveSubmission(context.Background(), sampleSubmission(), 1, sampleAuditEntry())
	if !errors.Is(err, domainerrors.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveSubmissionWritesAuditInSameTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "verification_submissions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "audit_entries"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	submission := sampleSubmission()
	submission.Status = entities.SubmissionStatusModeratorReviewed
	submission.Version = 2
	if err := repo.SaveSubmission(context.Background(), submission, 1, sampleAuditEntry()); err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSubmissionRejectsExistingOpenRecord(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "verification_submissions" WHERE submitter_id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateSubmission(context.Background(), sampleSubmission(), sampleAuditEntry())
	if !errors.Is(err, domainerrors.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func sampleSubmission() entities.Submission {
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	return entities.Submission{
		SubmissionID: "sub-1",
		Type:         entities.SubmissionTypeCaregiverCertificate,
		SubmitterID:  "caregiver-1",
		Status:       entities.SubmissionStatusPending,
		Version:      1,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
}

func sampleAuditEntry() audit.Entry {
	return audit.Entry{
		EntryID:    "entry-1",
		ActorID:    "moderator-1",
		ActorRole:  "moderator",
		Action:     "moderator_recommended_approve",
		EntityType: "submission",
		EntityID:   "sub-1",
		OccurredAt: time.Date(2026, time.March, 14, 9, 45, 0, 0, time.UTC),
	}
}
