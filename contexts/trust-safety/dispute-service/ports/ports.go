package ports

import (
	"context"
	"time"

	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/events"
)

// ListFilter narrows ListDisputes results. Zero values mean "any".
type ListFilter struct {
	Status     entities.DisputeStatus
	Type       entities.DisputeType
	JobID      string
	RaisedByID string
}

// Repository persists disputes. Create and Save must write the audit entry
// atomically with the state change.
type Repository interface {
	CreateDispute(ctx context.Context, dispute entities.Dispute, entry audit.Entry) error
	GetDispute(ctx context.Context, disputeID string) (entities.Dispute, error)
	SaveDispute(ctx context.Context, dispute entities.Dispute, expectedVersion int64, entry audit.Entry) error
	ListDisputes(ctx context.Context, filter ListFilter) ([]entities.Dispute, error)
	// ListDueEscrowRelease returns resolved or closed disputes whose funds
	// are still held and whose hold window elapsed at or before now.
	ListDueEscrowRelease(ctx context.Context, now time.Time, limit int) ([]entities.Dispute, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// Actor is the authenticated caller as seen by this context.
type Actor struct {
	ID     string
	Role   string
	Linked []string
}

type AccessDecision struct {
	Allowed bool
	Reason  string
}

// AccessGate fronts the authorization context. Dominates answers role
// hierarchy questions for tier checks.
type AccessGate interface {
	Authorize(ctx context.Context, actor Actor, resource, action, ownerID string) (AccessDecision, error)
	Dominates(role, over string) (bool, error)
}

// NotificationPublisher delivers workflow notifications fire-and-forget.
type NotificationPublisher interface {
	Publish(ctx context.Context, envelope events.Envelope) error
}

type Metrics interface {
	IncWorkflowTransition(entity, from, to string)
}
