package dispatch

import (
	"errors"
	"fmt"

	"github.com/ulrichard/uttesla/session"
)

var (
	ErrNotAuthenticated = session.ErrNotAuthenticated
	ErrInvalidIndex     = errors.New("invalid vehicle index")
	ErrRemoteFailed     = errors.New("remote call failed")

	ErrInvalidChargeLimit = errors.New("charge limit must be between 0 and 100")
)

// Error describes a failed vehicle operation. Kind is one of
// ErrNotAuthenticated, ErrInvalidIndex or ErrRemoteFailed.
type Error struct {
	Kind error
	Op   string
	Idx  int
	Err  error
}

func (e *Error) Error() string {
	cause := e.Err
	if cause == nil {
		cause = e.Kind
	}
	return fmt.Sprintf("failed to %s %d: %v", e.Op, e.Idx, cause)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
