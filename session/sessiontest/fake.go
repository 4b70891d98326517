// Package sessiontest provides in-memory doubles for session.API and
// session.Connector.
package sessiontest

import (
	"context"
	"errors"
	"sync"

	"github.com/ulrichard/uttesla/session"
	"github.com/ulrichard/uttesla/tesla"
)

// Call is one recorded API call.
type Call struct {
	Method string
	ID     tesla.VehicleID
	Args   []any
}

// FakeAPI records every call. Errors keyed by method name are returned
// from that method instead of a result.
type FakeAPI struct {
	mu sync.Mutex

	ProductList []tesla.Product
	Data        *tesla.VehicleData
	Errors      map[string]error

	calls []Call
}

var _ session.API = &FakeAPI{}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{Errors: map[string]error{}}
}

// Fail makes method return err from now on.
func (f *FakeAPI) Fail(method string, err error) *FakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Errors == nil {
		f.Errors = map[string]error{}
	}
	f.Errors[method] = err
	return f
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// Methods returns the recorded method names in order.
func (f *FakeAPI) Methods() []string {
	calls := f.Calls()
	methods := make([]string, len(calls))
	for i, c := range calls {
		methods[i] = c.Method
	}
	return methods
}

func (f *FakeAPI) record(method string, id tesla.VehicleID, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, ID: id, Args: args})
	return f.Errors[method]
}

func (f *FakeAPI) Products(_ context.Context) ([]tesla.Product, error) {
	if err := f.record("Products", 0); err != nil {
		return nil, err
	}
	return f.ProductList, nil
}

func (f *FakeAPI) WakeUp(_ context.Context, id tesla.VehicleID) (*tesla.Vehicle, error) {
	if err := f.record("WakeUp", id); err != nil {
		return nil, err
	}
	return &tesla.Vehicle{ID: id, State: "online"}, nil
}

func (f *FakeAPI) VehicleData(_ context.Context, id tesla.VehicleID) (*tesla.VehicleData, error) {
	if err := f.record("VehicleData", id); err != nil {
		return nil, err
	}
	if f.Data == nil {
		return &tesla.VehicleData{ID: id, State: "online"}, nil
	}
	return f.Data, nil
}

func (f *FakeAPI) SetTemps(_ context.Context, id tesla.VehicleID, driver, passenger float64) error {
	return f.record("SetTemps", id, driver, passenger)
}

func (f *FakeAPI) AutoConditioningStart(_ context.Context, id tesla.VehicleID) error {
	return f.record("AutoConditioningStart", id)
}

func (f *FakeAPI) AutoConditioningStop(_ context.Context, id tesla.VehicleID) error {
	return f.record("AutoConditioningStop", id)
}

func (f *FakeAPI) DoorLock(_ context.Context, id tesla.VehicleID) error {
	return f.record("DoorLock", id)
}

func (f *FakeAPI) DoorUnlock(_ context.Context, id tesla.VehicleID) error {
	return f.record("DoorUnlock", id)
}

func (f *FakeAPI) SetChargeLimit(_ context.Context, id tesla.VehicleID, percent int) error {
	return f.record("SetChargeLimit", id, percent)
}

func (f *FakeAPI) ChargeStart(_ context.Context, id tesla.VehicleID) error {
	return f.record("ChargeStart", id)
}

func (f *FakeAPI) ChargeStop(_ context.Context, id tesla.VehicleID) error {
	return f.record("ChargeStop", id)
}

func (f *FakeAPI) HonkHorn(_ context.Context, id tesla.VehicleID) error {
	return f.record("HonkHorn", id)
}

func (f *FakeAPI) FlashLights(_ context.Context, id tesla.VehicleID) error {
	return f.record("FlashLights", id)
}

func (f *FakeAPI) RemoteStartDrive(_ context.Context, id tesla.VehicleID) error {
	return f.record("RemoteStartDrive", id)
}

// ErrRefresh is returned by FakeConnector when RefreshErr is unset and
// Refreshed is nil.
var ErrRefresh = errors.New("sessiontest: no refresh result configured")

// FakeConnector hands out Client unconditionally and remembers which
// tokens it was given.
type FakeConnector struct {
	Client session.API

	// Refreshed is returned from FromRefreshToken.
	Refreshed  *tesla.Token
	RefreshErr error

	AccessTokens  []string
	RefreshTokens []string
}

var _ session.Connector = &FakeConnector{}

func (c *FakeConnector) FromAccessToken(accessToken string) session.API {
	c.AccessTokens = append(c.AccessTokens, accessToken)
	return c.Client
}

func (c *FakeConnector) FromRefreshToken(_ context.Context, refreshToken string) (session.API, *tesla.Token, error) {
	c.RefreshTokens = append(c.RefreshTokens, refreshToken)
	if c.RefreshErr != nil {
		return nil, nil, c.RefreshErr
	}
	if c.Refreshed == nil {
		return nil, nil, ErrRefresh
	}
	return c.Client, c.Refreshed, nil
}

// Vehicles builds a products list with one vehicle per name, ids starting
// at 1.
func Vehicles(names ...string) []tesla.Product {
	products := make([]tesla.Product, len(names))
	for i, name := range names {
		products[i] = tesla.Product{Vehicle: &tesla.Vehicle{
			ID:          tesla.VehicleID(i + 1),
			VehicleID:   int64(i + 1),
			DisplayName: name,
			State:       "online",
		}}
	}
	return products
}
