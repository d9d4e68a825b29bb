package errors

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnknownRole     = errors.New("unknown role")
	ErrInvalidRequest  = errors.New("invalid authorization request")
)
