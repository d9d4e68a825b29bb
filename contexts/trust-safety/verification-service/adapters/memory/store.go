package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/audit"
)

// Store is the in-memory adapter used by tests and local bootstrap. It
// implements ports.Repository, ports.Clock and ports.IDGenerator.
type Store struct {
	mu          sync.RWMutex
	submissions map[string]entities.Submission
	auditTrail  []audit.Entry
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		submissions: make(map[string]entities.Submission),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock pins the store clock for deterministic tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Now() time.Time { return s.now() }

func (s *Store) NewID() string { return uuid.NewString() }

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.submissions[submission.SubmissionID]; exists {
		return domainerrors.ErrDuplicateSubmission
	}
	for _, existing := range s.submissions {
		if existing.SubmitterID == submission.SubmitterID &&
			existing.Type == submission.Type &&
			!existing.Status.Terminal() {
			return domainerrors.ErrDuplicateSubmission
		}
	}
	s.submissions[submission.SubmissionID] = submission
	s.auditTrail = append(s.auditTrail, entry)
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[submissionID]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) SaveSubmission(_ context.Context, submission entities.Submission, expectedVersion int64, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.submissions[submission.SubmissionID]
	if !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	if stored.Version != expectedVersion {
		return domainerrors.ErrConflict
	}
	s.submissions[submission.SubmissionID] = submission
	s.auditTrail = append(s.auditTrail, entry)
	return nil
}

func (s *Store) ListSubmissions(_ context.Context, filter ports.ListFilter) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]entities.Submission, 0, len(s.submissions))
	for _, submission := range s.submissions {
		if filter.Status != "" && submission.Status != filter.Status {
			continue
		}
		if filter.Type != "" && submission.Type != filter.Type {
			continue
		}
		if filter.SubmitterID != "" && submission.SubmitterID != filter.SubmitterID {
			continue
		}
		results = append(results, submission)
	}
	return results, nil
}

// AuditTrail returns a copy of the recorded entries for test assertions.
func (s *Store) AuditTrail() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Entry, len(s.auditTrail))
	copy(out, s.auditTrail)
	return out
}
