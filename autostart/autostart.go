// Package autostart starts charging when the car is parked at home and
// below its target charge.
package autostart

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ulrichard/uttesla/config"
	"github.com/ulrichard/uttesla/snapshot"
)

const DefaultRadiusMeters = 100

var log = logrus.StandardLogger()

var (
	ErrStartFailed = errors.New("failed to start charging")
	ErrLoginFailed = errors.New("login failed")
)

// Authenticator logs in and resolves the vehicle roster. *app.App
// implements it.
type Authenticator interface {
	Login(ctx context.Context) bool
	Roster(ctx context.Context) string
}

// Vehicle is what the service needs from the app surface. *app.App
// implements it.
type Vehicle interface {
	Snapshot(ctx context.Context, idx int) (snapshot.Snapshot, bool)
	SetCharging(ctx context.Context, idx int, start bool, limit int) bool
}

type Service struct {
	vehicle      Vehicle
	idx          int
	maxCharge    int
	home         config.Location
	radiusMeters float64
}

func NewService(vehicle Vehicle, idx int, maxCharge int, home config.Location) *Service {
	return &Service{
		vehicle:      vehicle,
		idx:          idx,
		maxCharge:    maxCharge,
		home:         home,
		radiusMeters: DefaultRadiusMeters,
	}
}

// Decide reports whether charging should be started for s, and why not
// otherwise.
func (as *Service) Decide(s snapshot.Snapshot) (bool, string) {
	distanceKm, ok := s.DistanceFrom(as.home.Latitude, as.home.Longitude)
	if !ok {
		return false, "vehicle position is unknown"
	}
	distanceMeters := distanceKm * 1000
	log.Debugf("distance from home: %.1f meters", distanceMeters)
	if distanceMeters > as.radiusMeters {
		return false, fmt.Sprintf("car is %.0f m away from home", distanceMeters)
	}

	if s.ChargeRate > 0 {
		return false, "car is already charging"
	}

	if s.BatteryLevel >= int64(as.maxCharge) {
		return false, fmt.Sprintf("car is already charged to %d%%", s.BatteryLevel)
	}
	return true, ""
}

// TryAutostart fetches a fresh snapshot and starts charging up to the
// maximum charge if the car is home, idle and below it.
func (as *Service) TryAutostart(ctx context.Context) error {
	log.Debugf("autostart: vehicle=%d, maxCharge=%d", as.idx, as.maxCharge)

	s, ok := as.vehicle.Snapshot(ctx, as.idx)
	if !ok {
		return fmt.Errorf("failed to get snapshot of vehicle %d", as.idx)
	}

	start, reason := as.Decide(s)
	if !start {
		log.Infof("not charging: %s", reason)
		return nil
	}

	log.Info("all conditions met, starting charge")
	if !as.vehicle.SetCharging(ctx, as.idx, true, as.maxCharge) {
		return ErrStartFailed
	}
	log.Info("charging started")
	return nil
}

// Run logs in and resolves the roster before calling TryAutostart, so a
// long running schedule picks up fresh tokens on every check.
func (as *Service) Run(ctx context.Context, auth Authenticator) error {
	if !auth.Login(ctx) {
		return ErrLoginFailed
	}
	auth.Roster(ctx)
	return as.TryAutostart(ctx)
}
