package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	"carebridge/contexts/identity-access/authorization-service/domain/services"
	"carebridge/internal/shared/audit"
)

// Denial reasons recorded in the audit log. Callers never see these; the
// transport layer returns a uniform forbidden response so that a flatly
// denied role cannot learn anything about resource ownership.
const (
	ReasonGranted          = "granted"
	ReasonOwnResource      = "own_resource"
	ReasonInsufficientRole = "insufficient_role"
	ReasonNotOwner         = "not_owner"
	ReasonOwnerUnresolved  = "owner_unresolved"
	ReasonUnknownRole      = "unknown_role"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Metrics counts authorization denials. Implemented by the platform obs
// package; nil disables counting.
type Metrics interface {
	IncAuthzDenial(resource, action, reason string)
}

// AuthorizeRequest carries one access check. OwnerID is the owning identity
// of the target resource and is required whenever the matrix outcome is
// own-only.
type AuthorizeRequest struct {
	Identity entities.Identity
	Resource services.Resource
	Action   services.Action
	OwnerID  string
}

// AuthorizeUseCase is the single gate every protected operation consults.
// It never mutates Submissions or Disputes; it only reads enough to decide
// ownership-based access.
type AuthorizeUseCase struct {
	Audit   audit.Sink
	Metrics Metrics
	Clock   Clock
	Logger  *slog.Logger
}

// Execute decides allow/deny. The role check runs before the ownership
// check so a denied role never leaks ownership information through a
// different code path. Every denial is appended to the audit sink; allows
// are not logged here (the workflow logs its own transitions).
func (u AuthorizeUseCase) Execute(ctx context.Context, req AuthorizeRequest) entities.Decision {
	now := u.now()

	if _, err := services.Rank(req.Identity.Role); err != nil {
		return u.deny(ctx, req, ReasonUnknownRole, now)
	}

	switch services.Lookup(req.Identity.Role, req.Resource, req.Action) {
	case services.OutcomeAllow:
		return entities.Decision{Allowed: true, Reason: ReasonGranted, CheckedAt: now}
	case services.OutcomeAllowOwn:
		if strings.TrimSpace(req.OwnerID) == "" {
			return u.deny(ctx, req, ReasonOwnerUnresolved, now)
		}
		if !req.Identity.Owns(req.OwnerID) {
			return u.deny(ctx, req, ReasonNotOwner, now)
		}
		return entities.Decision{Allowed: true, Reason: ReasonOwnResource, CheckedAt: now}
	default:
		return u.deny(ctx, req, ReasonInsufficientRole, now)
	}
}

func (u AuthorizeUseCase) deny(ctx context.Context, req AuthorizeRequest, reason string, now time.Time) entities.Decision {
	logger := ResolveLogger(u.Logger)
	logger.Warn("authorization denied",
		"event", "authz_denied",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"actor_id", req.Identity.ID,
		"actor_role", string(req.Identity.Role),
		"resource", string(req.Resource),
		"action", string(req.Action),
		"reason", reason,
	)
	if u.Metrics != nil {
		u.Metrics.IncAuthzDenial(string(req.Resource), string(req.Action), reason)
	}
	if u.Audit != nil {
		if err := u.Audit.Append(ctx, audit.Entry{
			ActorID:    req.Identity.ID,
			ActorRole:  string(req.Identity.Role),
			Action:     string(req.Action),
			EntityType: string(req.Resource),
			EntityID:   req.OwnerID,
			Reason:     reason,
			OccurredAt: now,
		}); err != nil {
			logger.Error("audit append failed",
				"event", "authz_audit_append_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}
	return entities.Decision{Allowed: false, Reason: reason, CheckedAt: now}
}

func (u AuthorizeUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
