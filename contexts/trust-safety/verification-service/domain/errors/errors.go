package errors

import "errors"

var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrDuplicateSubmission  = errors.New("open submission of this type already exists for submitter")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("actor not allowed to perform this operation")
	ErrNotAssignedModerator = errors.New("submission is assigned to another moderator")
	ErrConflict             = errors.New("submission was modified by a concurrent request")
	ErrBusy                 = errors.New("submission is locked by another request")
)
