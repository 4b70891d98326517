package session

import "errors"

var (
	ErrNoCredentials    = errors.New("no stored credentials, interactive login is not supported yet")
	ErrRefreshFailed    = errors.New("failed to refresh token")
	ErrCredentials      = errors.New("credential store failure")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrFetchFailed      = errors.New("failed to get vehicles")
)

// AuthError is returned by Login. Kind is one of ErrNoCredentials,
// ErrRefreshFailed or ErrCredentials; Err is the underlying cause, if any.
type AuthError struct {
	Kind error
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RosterError is returned by ResolveRoster. Kind is ErrNotAuthenticated or
// ErrFetchFailed.
type RosterError struct {
	Kind error
	Err  error
}

func (e *RosterError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *RosterError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
