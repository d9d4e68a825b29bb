package httptransport

import "time"

type RaiseDisputeRequest struct {
	Type           string    `json:"type"`
	JobID          string    `json:"job_id"`
	AgainstID      string    `json:"against_id"`
	Description    string    `json:"description"`
	Evidence       []string  `json:"evidence,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	JobCompletedAt time.Time `json:"job_completed_at,omitempty"`
}

type EscalateDisputeRequest struct {
	Notes string `json:"notes"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes"`
}

type DisputeResponse struct {
	DisputeID       string     `json:"dispute_id"`
	Type            string     `json:"type"`
	Severity        string     `json:"severity"`
	JobID           string     `json:"job_id"`
	RaisedByID      string     `json:"raised_by_id"`
	AgainstID       string     `json:"against_id"`
	Description     string     `json:"description"`
	Evidence        []string   `json:"evidence,omitempty"`
	Amount          string     `json:"amount,omitempty"`
	Status          string     `json:"status"`
	ModeratorID     string     `json:"moderator_id,omitempty"`
	EscalationNotes string     `json:"escalation_notes,omitempty"`
	Resolution      string     `json:"resolution,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	ResolvedByID    string     `json:"resolved_by_id,omitempty"`
	EscrowHoldUntil *time.Time `json:"escrow_hold_until,omitempty"`
	FundsReleased   bool       `json:"funds_released"`
	RaisedAt        time.Time  `json:"raised_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ListDisputesResponse struct {
	Items []DisputeResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  string `json:"status,omitempty"`
}
