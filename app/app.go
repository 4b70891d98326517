// Package app is the surface the shells call. Nothing in here returns an
// error: failures end up in the event log and in the diagnostic log, and
// the caller gets a neutral value back.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ulrichard/uttesla/dispatch"
	"github.com/ulrichard/uttesla/eventlog"
	"github.com/ulrichard/uttesla/metrics"
	"github.com/ulrichard/uttesla/session"
	"github.com/ulrichard/uttesla/snapshot"
)

var log = logrus.StandardLogger()

type App struct {
	session    *session.Session
	dispatcher *dispatch.Dispatcher
	events     *eventlog.Log
}

func New(s *session.Session) *App {
	events := eventlog.New()
	return &App{
		session:    s,
		dispatcher: dispatch.New(s, events),
		events:     events,
	}
}

// orDefault returns value, or records err and returns fallback.
func orDefault[T any](a *App, call string, value T, err error, fallback T) T {
	metrics.RecordCall(call, err == nil)
	if err == nil {
		return value
	}
	log.Error(err)
	a.events.Push(err.Error())
	return fallback
}

func (a *App) Login(ctx context.Context) bool {
	return orDefault(a, "login", true, a.session.Login(ctx), false)
}

// Roster resolves the vehicles of the account and returns their names, one
// per line.
func (a *App) Roster(ctx context.Context) string {
	names, err := a.session.ResolveRoster(ctx)
	return orDefault(a, "roster", names, err, "")
}

// VehicleSnapshot returns the snapshot JSON of vehicle idx, or "".
func (a *App) VehicleSnapshot(ctx context.Context, idx int) string {
	out, err := a.dispatcher.FetchSnapshot(ctx, idx)
	return orDefault(a, "snapshot", out, err, "")
}

// Snapshot is VehicleSnapshot before serialization. ok is false on failure.
func (a *App) Snapshot(ctx context.Context, idx int) (s snapshot.Snapshot, ok bool) {
	s, err := a.dispatcher.Snapshot(ctx, idx)
	if orDefault(a, "snapshot", true, err, false) {
		return s, true
	}
	return snapshot.Reduce(nil), false
}

func (a *App) SetClimate(ctx context.Context, idx int, enable bool, tempCelsius int) bool {
	return orDefault(a, "climate", true, a.dispatcher.SetClimate(ctx, idx, enable, tempCelsius), false)
}

func (a *App) SetDoors(ctx context.Context, idx int, unlock bool) bool {
	return orDefault(a, "doors", true, a.dispatcher.SetDoors(ctx, idx, unlock), false)
}

func (a *App) SetCharging(ctx context.Context, idx int, start bool, limit int) bool {
	return orDefault(a, "charging", true, a.dispatcher.SetCharging(ctx, idx, start, limit), false)
}

func (a *App) Honk(ctx context.Context, idx int) bool {
	return orDefault(a, "honk", true, a.dispatcher.Honk(ctx, idx), false)
}

func (a *App) Flash(ctx context.Context, idx int) bool {
	return orDefault(a, "flash", true, a.dispatcher.FlashLights(ctx, idx), false)
}

func (a *App) RemoteStart(ctx context.Context, idx int) bool {
	return orDefault(a, "remote_start", true, a.dispatcher.RemoteStartDrive(ctx, idx), false)
}

// PollLog renders the newest event log entries.
func (a *App) PollLog() string {
	return a.events.String()
}

func (a *App) Vehicles() []session.Vehicle {
	return a.session.Roster()
}

func (a *App) State() string {
	return a.session.State()
}
