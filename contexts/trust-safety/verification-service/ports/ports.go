package ports

import (
	"context"
	"time"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	"carebridge/internal/shared/audit"
	"carebridge/internal/shared/events"
)

// ListFilter narrows ListSubmissions results. Zero values mean "any".
type ListFilter struct {
	Status      entities.SubmissionStatus
	Type        entities.SubmissionType
	SubmitterID string
}

// Repository persists submissions. Create and Save must write the audit
// entry atomically with the state change.
type Repository interface {
	CreateSubmission(ctx context.Context, submission entities.Submission, entry audit.Entry) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	SaveSubmission(ctx context.Context, submission entities.Submission, expectedVersion int64, entry audit.Entry) error
	ListSubmissions(ctx context.Context, filter ListFilter) ([]entities.Submission, error)
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
// Failures are logged by callers and never roll back state.
type NotificationPublisher interface {
	Publish(ctx context.Context, envelope events.Envelope) error
}

type Metrics interface {
	IncWorkflowTransition(entity, from, to string)
}
