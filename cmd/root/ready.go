package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/session"
)

var (
	ErrLoginFailed = errors.New("login failed")
	ErrNoVehicles  = errors.New("no vehicles found")
)

// Ready logs in and resolves the roster. Details of a failure are in the
// event log.
func Ready(ctx context.Context) (*app.App, error) {
	a := GetApp()
	if a == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	if !a.Login(ctx) {
		return nil, ErrLoginFailed
	}
	a.Roster(ctx)
	if a.State() != session.StateReady {
		return nil, session.ErrFetchFailed
	}
	if len(a.Vehicles()) == 0 {
		return nil, ErrNoVehicles
	}
	return a, nil
}

// Check turns the boolean result of an app call into an error.
func Check(ok bool, action string) error {
	if !ok {
		return fmt.Errorf("%s failed", action)
	}
	return nil
}
