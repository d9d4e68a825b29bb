package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
)

// Store is the in-memory adapter used by tests and local bootstrap. It
// implements ports.Repository, ports.Clock and ports.IDGenerator.
type Store struct {
	mu         sync.RWMutex
	disputes   map[string]entities.Dispute
	auditTrail []audit.Entry
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		disputes: make(map[string]entities.Dispute),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock pins the store clock for deterministic tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Now() time.Time { return s.now() }

func (s *Store) NewID() string { return uuid.NewString() }

func (s *Store) CreateDispute(_ context.Context, dispute entities.Dispute, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.disputes[dispute.DisputeID]; exists {
		return domainerrors.ErrDuplicateDispute
	}
	for _, existing := range s.disputes {
		if existing.JobID == dispute.JobID &&
			existing.RaisedByID == dispute.RaisedByID &&
			existing.AgainstID == dispute.AgainstID &&
			existing.Status.Open() {
			return domainerrors.ErrDuplicateDispute
		}
	}
	s.disputes[dispute.DisputeID] = dispute
	s.auditTrail = append(s.auditTrail, entry)
	return nil
}

func (s *Store) GetDispute(_ context.Context, disputeID string) (entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dispute, ok := s.disputes[disputeID]
	if !ok {
		return entities.Dispute{}, domainerrors.ErrDisputeNotFound
	}
	return dispute, nil
}

func (s *Store) SaveDispute(_ context.Context, dispute entities.Dispute, expectedVersion int64, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.disputes[dispute.DisputeID]
	if !ok {
		return domainerrors.ErrDisputeNotFound
	}
	if stored.Version != expectedVersion {
		return domainerrors.ErrConflict
	}
	s.disputes[dispute.DisputeID] = dispute
	s.auditTrail = append(s.auditTrail, entry)
	return nil
}

func (s *Store) ListDisputes(_ context.Context, filter ports.ListFilter) ([]entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]entities.Dispute, 0, len(s.disputes))
	for _, dispute := range s.disputes {
		if filter.Status != "" && dispute.Status != filter.Status {
			continue
		}
		if filter.Type != "" && dispute.Type != filter.Type {
			continue
		}
		if filter.JobID != "" && dispute.JobID != filter.JobID {
			continue
		}
		if filter.RaisedByID != "" && dispute.RaisedByID != filter.RaisedByID {
			continue
		}
		results = append(results, dispute)
	}
	return results, nil
}

func (s *Store) ListDueEscrowRelease(_ context.Context, now time.Time, limit int) ([]entities.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	results := make([]entities.Dispute, 0)
	for _, dispute := range s.disputes {
		if dispute.FundsReleased {
			continue
		}
		if dispute.Type != entities.DisputeTypePayment {
			continue
		}
		if !dispute.FundsReleasable(now) {
			continue
		}
		results = append(results, dispute)
		if len(results) == limit {
			break
		}
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
