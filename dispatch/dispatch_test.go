package dispatch_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulrichard/uttesla/credentials"
	"github.com/ulrichard/uttesla/dispatch"
	"github.com/ulrichard/uttesla/eventlog"
	"github.com/ulrichard/uttesla/session"
	"github.com/ulrichard/uttesla/session/sessiontest"
	"github.com/ulrichard/uttesla/tesla"
)

// newDispatcher returns a dispatcher over a logged in session whose roster
// holds "Blue Thunder" (id 1) and "Red Rocket" (id 2).
func newDispatcher(t *testing.T) (*dispatch.Dispatcher, *sessiontest.FakeAPI, *eventlog.Log) {
	t.Helper()
	api := sessiontest.NewFakeAPI()
	api.ProductList = sessiontest.Vehicles("Blue Thunder", "Red Rocket")

	store := credentials.NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.AccessTokenPath(), []byte("token"), 0o600))

	s := session.New(store, tesla.Config{}, session.WithConnector(&sessiontest.FakeConnector{Client: api}))
	require.NoError(t, s.Login(context.Background()))
	_, err := s.ResolveRoster(context.Background())
	require.NoError(t, err)

	events := eventlog.New()
	return dispatch.New(s, events), api, events
}

func TestDispatcher_NotAuthenticated(t *testing.T) {
	s := session.New(credentials.NewStore(t.TempDir()), tesla.Config{})
	events := eventlog.New()
	d := dispatch.New(s, events)

	err := d.Honk(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatch.ErrNotAuthenticated))
	assert.True(t, errors.Is(err, session.ErrNotAuthenticated))
	assert.Empty(t, events.Entries())

	out, err := d.FetchSnapshot(context.Background(), 0)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, dispatch.ErrNotAuthenticated))
}

func TestDispatcher_InvalidIndex(t *testing.T) {
	d, api, events := newDispatcher(t)
	ctx := context.Background()

	calls := map[string]func(idx int) error{
		"honk":     func(idx int) error { return d.Honk(ctx, idx) },
		"flash":    func(idx int) error { return d.FlashLights(ctx, idx) },
		"drive":    func(idx int) error { return d.RemoteStartDrive(ctx, idx) },
		"doors":    func(idx int) error { return d.SetDoors(ctx, idx, true) },
		"climate":  func(idx int) error { return d.SetClimate(ctx, idx, true, 21) },
		"charging": func(idx int) error { return d.SetCharging(ctx, idx, true, 80) },
		"snapshot": func(idx int) error { _, err := d.FetchSnapshot(ctx, idx); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			for _, idx := range []int{-1, 2, 100} {
				err := call(idx)
				require.Error(t, err)
				assert.True(t, errors.Is(err, dispatch.ErrInvalidIndex))

				var dispatchErr *dispatch.Error
				require.True(t, errors.As(err, &dispatchErr))
				assert.Equal(t, idx, dispatchErr.Idx)
			}
		})
	}

	// only the roster lookup during setup reached the API
	assert.Equal(t, []string{"Products"}, api.Methods())
	assert.Empty(t, events.Entries())
}

func TestDispatcher_FetchSnapshot(t *testing.T) {
	d, api, events := newDispatcher(t)
	inside := 21.0
	api.Data = &tesla.VehicleData{
		State:        "online",
		ClimateState: &tesla.ClimateState{InsideTemp: &inside, DriverTempSetting: 21, FanStatus: 0},
		ChargeState:  &tesla.ChargeState{BatteryLevel: 50, IdealBatteryRange: 100.0, ChargeLimitSoc: 90},
	}

	out, err := d.FetchSnapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"state": "online",
		"gps_pos": "",
		"inside_temp": "21",
		"outside_temp": "",
		"driver_temp_setting": 21,
		"hvac_enabled": false,
		"battery_level": 50,
		"battery_range": 160.9344,
		"charge_rate": 0,
		"minutes_to_full_charge": 0,
		"charge_energy_added": 0,
		"charge_limit": 90
	}`, out)

	calls := api.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "WakeUp", calls[1].Method)
	assert.Equal(t, tesla.VehicleID(2), calls[1].ID)
	assert.Equal(t, "VehicleData", calls[2].Method)
	assert.Equal(t, tesla.VehicleID(2), calls[2].ID)
	assert.Empty(t, events.Entries())
}

func TestDispatcher_FetchSnapshot_WakeFailed(t *testing.T) {
	d, api, _ := newDispatcher(t)
	cause := errors.New("vehicle unavailable")
	api.Fail("WakeUp", cause)

	out, err := d.FetchSnapshot(context.Background(), 0)
	assert.Empty(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatch.ErrRemoteFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to wake up vehicle 0: vehicle unavailable", err.Error())
	assert.Equal(t, []string{"Products", "WakeUp"}, api.Methods())
}

func TestDispatcher_FetchSnapshot_DataFailed(t *testing.T) {
	d, api, _ := newDispatcher(t)
	api.Fail("VehicleData", errors.New("timeout"))

	_, err := d.FetchSnapshot(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, "failed to get vehicle 0: timeout", err.Error())
}

func TestDispatcher_SetClimate(t *testing.T) {
	d, api, events := newDispatcher(t)

	require.NoError(t, d.SetClimate(context.Background(), 0, true, 21))
	require.NoError(t, d.SetClimate(context.Background(), 0, false, 18))

	calls := api.Calls()[1:]
	require.Len(t, calls, 4)
	assert.Equal(t, sessiontest.Call{Method: "SetTemps", ID: 1, Args: []any{21.0, 21.0}}, calls[0])
	assert.Equal(t, "AutoConditioningStart", calls[1].Method)
	assert.Equal(t, sessiontest.Call{Method: "SetTemps", ID: 1, Args: []any{18.0, 18.0}}, calls[2])
	assert.Equal(t, "AutoConditioningStop", calls[3].Method)
	assert.Equal(t, "HVAC disabled\nHVAC enabled to 21°C", events.String())
}

func TestDispatcher_SetClimate_TempFailed(t *testing.T) {
	d, api, events := newDispatcher(t)
	api.Fail("SetTemps", errors.New("rejected"))

	err := d.SetClimate(context.Background(), 0, true, 21)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatch.ErrRemoteFailed))
	assert.Equal(t, []string{"Products", "SetTemps"}, api.Methods())
	assert.Empty(t, events.Entries())
}

func TestDispatcher_SetDoors(t *testing.T) {
	d, api, events := newDispatcher(t)

	require.NoError(t, d.SetDoors(context.Background(), 1, true))
	require.NoError(t, d.SetDoors(context.Background(), 1, false))

	assert.Equal(t, []string{"Products", "DoorUnlock", "DoorLock"}, api.Methods())
	assert.Equal(t, "doors locked\ndoors unlocked", events.String())
}

func TestDispatcher_SetDoors_Failed(t *testing.T) {
	d, api, events := newDispatcher(t)
	api.Fail("DoorLock", errors.New("could_not_wake_buses"))

	err := d.SetDoors(context.Background(), 0, false)
	require.Error(t, err)
	assert.Equal(t, "failed to lock the doors 0: could_not_wake_buses", err.Error())
	assert.Empty(t, events.Entries())
}

func TestDispatcher_SetCharging(t *testing.T) {
	d, api, events := newDispatcher(t)

	require.NoError(t, d.SetCharging(context.Background(), 0, true, 85))

	calls := api.Calls()[1:]
	require.Len(t, calls, 2)
	assert.Equal(t, sessiontest.Call{Method: "SetChargeLimit", ID: 1, Args: []any{85}}, calls[0])
	assert.Equal(t, "ChargeStart", calls[1].Method)
	assert.Equal(t, "charging started up to 85%", events.String())
}

func TestDispatcher_SetCharging_Stop(t *testing.T) {
	d, api, events := newDispatcher(t)

	require.NoError(t, d.SetCharging(context.Background(), 0, false, 85))
	assert.Equal(t, []string{"Products", "ChargeStop"}, api.Methods())
	assert.Equal(t, "charging stopped", events.String())
}

func TestDispatcher_SetCharging_LimitOutOfRange(t *testing.T) {
	d, api, events := newDispatcher(t)

	require.NoError(t, d.SetCharging(context.Background(), 0, true, 150))

	// no set_charge_limit call, but the start still goes out
	assert.Equal(t, []string{"Products", "ChargeStart"}, api.Methods())
	entries := events.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "charging started", entries[0])
	assert.Contains(t, entries[1], "failed to set charge limit 0")
}

func TestDispatcher_SetCharging_LimitFailed(t *testing.T) {
	d, api, events := newDispatcher(t)
	api.Fail("SetChargeLimit", errors.New("already_set"))

	require.NoError(t, d.SetCharging(context.Background(), 0, true, 80))
	assert.Equal(t, []string{"Products", "SetChargeLimit", "ChargeStart"}, api.Methods())
	assert.Equal(t, "charging started\nfailed to set charge limit 0: already_set", events.String())
}

func TestDispatcher_SetCharging_StartFailed(t *testing.T) {
	d, api, events := newDispatcher(t)
	api.Fail("ChargeStart", errors.New("no cable"))

	err := d.SetCharging(context.Background(), 0, true, 80)
	require.Error(t, err)
	assert.Equal(t, "failed to start charging 0: no cable", err.Error())
	assert.Empty(t, events.Entries())
}

func TestDispatcher_SimpleCommands(t *testing.T) {
	tests := []struct {
		name    string
		call    func(d *dispatch.Dispatcher) error
		method  string
		message string
	}{
		{
			name:    "honk",
			call:    func(d *dispatch.Dispatcher) error { return d.Honk(context.Background(), 1) },
			method:  "HonkHorn",
			message: "horn honked",
		},
		{
			name:    "flash",
			call:    func(d *dispatch.Dispatcher) error { return d.FlashLights(context.Background(), 1) },
			method:  "FlashLights",
			message: "lights flashed",
		},
		{
			name:    "remote start",
			call:    func(d *dispatch.Dispatcher) error { return d.RemoteStartDrive(context.Background(), 1) },
			method:  "RemoteStartDrive",
			message: "keyless driving active for two minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, api, events := newDispatcher(t)
			require.NoError(t, tt.call(d))

			calls := api.Calls()
			require.Len(t, calls, 2)
			assert.Equal(t, tt.method, calls[1].Method)
			assert.Equal(t, tesla.VehicleID(2), calls[1].ID)
			assert.Equal(t, tt.message, events.String())
		})

		t.Run(tt.name+" failed", func(t *testing.T) {
			d, api, events := newDispatcher(t)
			api.Fail(tt.method, errors.New("boom"))

			err := tt.call(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dispatch.ErrRemoteFailed))
			assert.Empty(t, events.Entries())
		})
	}
}
