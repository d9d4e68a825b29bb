package errors

import "errors"

var (
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrDuplicateDispute     = errors.New("open dispute already exists for this job and party pair")
	ErrDisputeWindowClosed  = errors.New("dispute window for the job has closed")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("actor not allowed to perform this operation")
	ErrNotAssignedModerator = errors.New("dispute is assigned to another moderator")
	ErrEscalationRequired   = errors.New("dispute severity requires escalation to an admin")
	ErrConflict             = errors.New("dispute was modified by a concurrent request")
	ErrBusy                 = errors.New("dispute is locked by another request")
)
