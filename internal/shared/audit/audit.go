package audit

import (
	"context"
	"sync"
	"time"
)

// Entry is an append-only record of an authorization denial or a workflow
// transition. Entries are never mutated or deleted; they are the only source
// of historical truth for compliance review.
type Entry struct {
	EntryID     string
	ActorID     string
	ActorRole   string
	Action      string
	EntityType  string
	EntityID    string
	PriorStatus string
	NewStatus   string
	Reason      string
	OccurredAt  time.Time
}

// Sink accepts audit entries. Implementations must be safe for concurrent
// appends and must not support update or delete.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// MemorySink collects entries in process. Used by tests and the in-memory
// module wiring.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of everything appended so far.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}
