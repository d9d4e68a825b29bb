package httptransport

import "time"

// CheckAccessRequest is the request body for one access check.
type CheckAccessRequest struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	OwnerID  string `json:"owner_id,omitempty"`
}

// CheckAccessResponse deliberately omits the denial reason; reasons live in
// the audit log only.
type CheckAccessResponse struct {
	Allowed   bool      `json:"allowed"`
	CheckedAt time.Time `json:"checked_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
