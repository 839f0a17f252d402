// ================== pkg/errors/errors.go =================
package errors

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("not a member of this list")
	ErrValidation    = errors.New("validation failed")
	ErrCodeExhausted = errors.New("could not allocate a unique invite code")
	ErrConflict      = errors.New("transaction conflict")
	ErrUnavailable   = errors.New("store unavailable")
)
