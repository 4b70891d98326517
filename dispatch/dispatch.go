// Package dispatch runs single vehicle operations against the session's
// client and records what succeeded in the event log.
package dispatch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ulrichard/uttesla/eventlog"
	"github.com/ulrichard/uttesla/session"
	"github.com/ulrichard/uttesla/snapshot"
	"github.com/ulrichard/uttesla/tesla"
)

var log = logrus.StandardLogger()

// Dispatcher addresses vehicles by their index in the session roster. It
// never retries.
type Dispatcher struct {
	session *session.Session
	events  *eventlog.Log
}

func New(s *session.Session, events *eventlog.Log) *Dispatcher {
	return &Dispatcher{session: s, events: events}
}

func (d *Dispatcher) vehicle(op string, idx int) (session.API, tesla.VehicleID, error) {
	client := d.session.Client()
	if client == nil {
		return nil, 0, &Error{Kind: ErrNotAuthenticated, Op: op, Idx: idx}
	}
	roster := d.session.Roster()
	if idx < 0 || idx >= len(roster) {
		return nil, 0, &Error{Kind: ErrInvalidIndex, Op: op, Idx: idx}
	}
	return client, roster[idx].ID, nil
}

func remoteFailed(op string, idx int, err error) error {
	return &Error{Kind: ErrRemoteFailed, Op: op, Idx: idx, Err: err}
}

// Snapshot wakes the vehicle once, fetches its data and reduces it.
func (d *Dispatcher) Snapshot(ctx context.Context, idx int) (snapshot.Snapshot, error) {
	client, id, err := d.vehicle("get vehicle", idx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	if _, err := client.WakeUp(ctx, id); err != nil {
		return snapshot.Snapshot{}, remoteFailed("wake up vehicle", idx, err)
	}
	data, err := client.VehicleData(ctx, id)
	if err != nil {
		return snapshot.Snapshot{}, remoteFailed("get vehicle", idx, err)
	}
	return snapshot.Reduce(data), nil
}

// FetchSnapshot is Snapshot serialized to JSON.
func (d *Dispatcher) FetchSnapshot(ctx context.Context, idx int) (string, error) {
	s, err := d.Snapshot(ctx, idx)
	if err != nil {
		return "", err
	}
	out, err := s.JSON()
	if err != nil {
		return "", &Error{Kind: ErrRemoteFailed, Op: "serialize vehicle", Idx: idx, Err: err}
	}
	return out, nil
}

// SetClimate sets driver and passenger temperature to tempCelsius, then
// starts or stops climate conditioning.
func (d *Dispatcher) SetClimate(ctx context.Context, idx int, enable bool, tempCelsius int) error {
	client, id, err := d.vehicle("set hvac temperature", idx)
	if err != nil {
		return err
	}

	temp := float64(tempCelsius)
	if err := client.SetTemps(ctx, id, temp, temp); err != nil {
		return remoteFailed("set hvac temperature", idx, err)
	}

	if enable {
		if err := client.AutoConditioningStart(ctx, id); err != nil {
			return remoteFailed("enable hvac", idx, err)
		}
		d.events.Push(fmt.Sprintf("HVAC enabled to %d°C", tempCelsius))
		return nil
	}

	if err := client.AutoConditioningStop(ctx, id); err != nil {
		return remoteFailed("disable hvac", idx, err)
	}
	d.events.Push("HVAC disabled")
	return nil
}

func (d *Dispatcher) SetDoors(ctx context.Context, idx int, unlock bool) error {
	op := "lock the doors"
	if unlock {
		op = "unlock the doors"
	}
	client, id, err := d.vehicle(op, idx)
	if err != nil {
		return err
	}

	if unlock {
		err = client.DoorUnlock(ctx, id)
	} else {
		err = client.DoorLock(ctx, id)
	}
	if err != nil {
		return remoteFailed(op, idx, err)
	}

	if unlock {
		d.events.Push("doors unlocked")
	} else {
		d.events.Push("doors locked")
	}
	return nil
}

// SetCharging starts charging up to limit percent, or stops charging. A
// failure to set the limit is recorded but does not prevent the start.
func (d *Dispatcher) SetCharging(ctx context.Context, idx int, start bool, limit int) error {
	op := "stop charging"
	if start {
		op = "start charging"
	}
	client, id, err := d.vehicle(op, idx)
	if err != nil {
		return err
	}

	if !start {
		if err := client.ChargeStop(ctx, id); err != nil {
			return remoteFailed(op, idx, err)
		}
		d.events.Push("charging stopped")
		return nil
	}

	done := fmt.Sprintf("charging started up to %d%%", limit)
	if err := d.setChargeLimit(ctx, client, id, limit); err != nil {
		msg := fmt.Sprintf("failed to set charge limit %d: %v", idx, err)
		log.Warn(msg)
		d.events.Push(msg)
		done = "charging started"
	}

	if err := client.ChargeStart(ctx, id); err != nil {
		return remoteFailed(op, idx, err)
	}
	d.events.Push(done)
	return nil
}

func (d *Dispatcher) setChargeLimit(ctx context.Context, client session.API, id tesla.VehicleID, limit int) error {
	if limit < 0 || limit > 100 {
		return fmt.Errorf("%w, got %d", ErrInvalidChargeLimit, limit)
	}
	return client.SetChargeLimit(ctx, id, limit)
}

func (d *Dispatcher) Honk(ctx context.Context, idx int) error {
	return d.simple(ctx, idx, "honk the horn", "horn honked", session.API.HonkHorn)
}

func (d *Dispatcher) FlashLights(ctx context.Context, idx int) error {
	return d.simple(ctx, idx, "flash the lights", "lights flashed", session.API.FlashLights)
}

// RemoteStartDrive enables keyless driving for two minutes.
func (d *Dispatcher) RemoteStartDrive(ctx context.Context, idx int) error {
	return d.simple(ctx, idx, "allow keyless driving", "keyless driving active for two minutes", session.API.RemoteStartDrive)
}

func (d *Dispatcher) simple(ctx context.Context, idx int, op, done string, call func(session.API, context.Context, tesla.VehicleID) error) error {
	client, id, err := d.vehicle(op, idx)
	if err != nil {
		return err
	}
	if err := call(client, ctx, id); err != nil {
		return remoteFailed(op, idx, err)
	}
	log.Debugf("vehicle %d: %s", idx, done)
	d.events.Push(done)
	return nil
}
