package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSigningUnavailable = errors.New("signing service unavailable")
	ErrStorage            = errors.New("storage failure")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user is deactivated")
)
