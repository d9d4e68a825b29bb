package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_moderator_review"
	DisputeStatusEscalated   DisputeStatus = "escalated"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusClosed      DisputeStatus = "closed"
)

// Terminal reports whether no further transitions exist from the status.
// Resolved is not terminal; a resolved dispute still gets closed.
func (s DisputeStatus) Terminal() bool {
	return s == DisputeStatusClosed
}

// Open reports whether the dispute still counts against the one-open-dispute
// rule for its (job, raisedBy, against) triple. A resolved dispute awaiting
// final closure no longer blocks a new raise.
func (s DisputeStatus) Open() bool {
	return s != DisputeStatusResolved && s != DisputeStatusClosed
}

type DisputeType string

const (
	DisputeTypePayment  DisputeType = "payment"
	DisputeTypeQuality  DisputeType = "quality"
	DisputeTypeSafety   DisputeType = "safety"
	DisputeTypeBehavior DisputeType = "behavior"
	DisputeTypeNoShow   DisputeType = "no_show"
)

func ValidDisputeType(t DisputeType) bool {
	switch t {
	case DisputeTypePayment, DisputeTypeQuality, DisputeTypeSafety, DisputeTypeBehavior, DisputeTypeNoShow:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityFor derives severity from the dispute type. Severity is fixed at
// raise time and never reclassified later.
func SeverityFor(t DisputeType) Severity {
	switch t {
	case DisputeTypePayment, DisputeTypeSafety, DisputeTypeBehavior:
		return SeverityHigh
	case DisputeTypeQuality:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// EscalationRequired reports whether the severity puts the dispute beyond
// moderator authority; such disputes can only be resolved by an admin after
// escalation.
func (s Severity) EscalationRequired() bool {
	return s == SeverityHigh
}

type Resolution string

const (
	ResolutionRefund        Resolution = "refund"
	ResolutionPartialRefund Resolution = "partial_refund"
	ResolutionReleasePay    Resolution = "release_payment"
	ResolutionWarning       Resolution = "warning_issued"
	ResolutionSuspension    Resolution = "suspension"
	ResolutionNoAction      Resolution = "no_action"
)

func ValidResolution(r Resolution) bool {
	switch r {
	case ResolutionRefund, ResolutionPartialRefund, ResolutionReleasePay,
		ResolutionWarning, ResolutionSuspension, ResolutionNoAction:
		return true
	}
	return false
}

// Dispute is a disagreement about a completed care job. Payment disputes
// carry the contested escrow amount and hold funds from the moment the
// dispute opens until the hold window elapses.
type Dispute struct {
	DisputeID       string
	Type            DisputeType
	Severity        Severity
	JobID           string
	RaisedByID      string
	AgainstID       string
	Description     string
	Evidence        []string
	Amount          decimal.Decimal
	Status          DisputeStatus
	ModeratorID     string
	ModeratorNotes  string
	EscalationNotes string
	Resolution      Resolution
	ResolutionNotes string
	ResolvedByID    string
	EscrowHoldUntil *time.Time
	FundsReleased   bool
	Version         int64
	RaisedAt        time.Time
	ReviewStartedAt *time.Time
	EscalatedAt     *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	UpdatedAt       time.Time
}

// FundsReleasable gates escrow movement on two independent conditions: the
// dispute has reached resolution and the hold window has fully elapsed.
func (d Dispute) FundsReleasable(now time.Time) bool {
	if d.Status != DisputeStatusResolved && d.Status != DisputeStatusClosed {
		return false
	}
	if d.EscrowHoldUntil == nil {
		return true
	}
	return !now.Before(*d.EscrowHoldUntil)
}
