package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnknownRole        = errors.New("unknown role")
	ErrSessionNotFound    = errors.New("session not found")
)

// LookupError is a transport or query failure against the role directory or
// the identity source. It is distinct from a successful "no role" answer.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// NewLookupError wraps err; a nil err yields nil.
func NewLookupError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LookupError{Op: op, Err: err}
}

// IsLookupError reports whether err carries a LookupError anywhere in its chain.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// InvariantViolation marks a programming error, such as reaching for the
// acting-mode overlay outside a session scope. It is raised with panic.
type InvariantViolation struct {
	Msg string
}

func (v InvariantViolation) Error() string {
	return "invariant violation: " + v.Msg
}
