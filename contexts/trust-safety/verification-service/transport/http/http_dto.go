package httptransport

import "time"

type CreateSubmissionRequest struct {
	Type string `json:"type"`
}

type RecommendSubmissionRequest struct {
	Recommendation string `json:"recommendation"`
	Notes          string `json:"notes,omitempty"`
}

type DecideSubmissionRequest struct {
	Decision string `json:"decision"`
	Feedback string `json:"feedback,omitempty"`
}

type SubmissionResponse struct {
	SubmissionID   string     `json:"submission_id"`
	Type           string     `json:"type"`
	SubmitterID    string     `json:"submitter_id"`
	Status         string     `json:"status"`
	ModeratorID    string     `json:"moderator_id,omitempty"`
	Recommendation string     `json:"recommendation,omitempty"`
	ModeratorNotes string     `json:"moderator_notes,omitempty"`
	AdminDecision  string     `json:"admin_decision,omitempty"`
	AdminFeedback  string     `json:"admin_feedback,omitempty"`
	ReviewCycle    int        `json:"review_cycle"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  string `json:"status,omitempty"`
}
