// Package snapshot reduces the vehicle_data payload to the compact record
// the shells display.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	geo "github.com/kellydunn/golang-geo"

	"github.com/ulrichard/uttesla/tesla"
)

const (
	mileToKm = 1.609344

	DefaultDriverTempSetting = 20
	DefaultChargeLimit       = 80
)

// Snapshot is the reduced vehicle state. The JSON field names are a wire
// contract with existing front ends.
type Snapshot struct {
	State               string  `json:"state"`
	GPSPos              string  `json:"gps_pos"`
	InsideTemp          string  `json:"inside_temp"`
	OutsideTemp         string  `json:"outside_temp"`
	DriverTempSetting   int64   `json:"driver_temp_setting"`
	HVACEnabled         bool    `json:"hvac_enabled"`
	BatteryLevel        int64   `json:"battery_level"`
	BatteryRange        float64 `json:"battery_range"` // km
	ChargeRate          float64 `json:"charge_rate"`
	MinutesToFullCharge int64   `json:"minutes_to_full_charge"`
	ChargeEnergyAdded   float64 `json:"charge_energy_added"`
	ChargeLimit         int64   `json:"charge_limit"`
}

// Reduce never fails. Sections missing from data leave their fields at the
// defaults; a nil data yields an all-default snapshot.
func Reduce(data *tesla.VehicleData) Snapshot {
	s := Snapshot{
		DriverTempSetting: DefaultDriverTempSetting,
		ChargeLimit:       DefaultChargeLimit,
	}
	if data == nil {
		return s
	}
	s.State = data.State

	if drive := data.DriveState; drive != nil {
		s.GPSPos = formatFloat(deref(drive.Latitude)) + "," + formatFloat(deref(drive.Longitude))
	}

	if climate := data.ClimateState; climate != nil {
		if climate.InsideTemp != nil {
			s.InsideTemp = formatFloat(*climate.InsideTemp)
		}
		if climate.OutsideTemp != nil {
			s.OutsideTemp = formatFloat(*climate.OutsideTemp)
		}
		s.DriverTempSetting = int64(climate.DriverTempSetting)
		s.HVACEnabled = climate.FanStatus != 0
	}

	if charge := data.ChargeState; charge != nil {
		s.BatteryLevel = charge.BatteryLevel
		s.BatteryRange = charge.IdealBatteryRange * mileToKm
		s.ChargeRate = charge.ChargeRate
		s.MinutesToFullCharge = charge.MinutesToFullCharge
		s.ChargeEnergyAdded = charge.ChargeEnergyAdded
		s.ChargeLimit = charge.ChargeLimitSoc
	}
	return s
}

func (s Snapshot) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}
	return string(data), nil
}

// Position parses GPSPos. ok is false when the position is unknown.
func (s Snapshot) Position() (lat, lon float64, ok bool) {
	latStr, lonStr, found := strings.Cut(s.GPSPos, ",")
	if !found {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// DistanceFrom returns the great circle distance in km between the vehicle
// and the given point.
func (s Snapshot) DistanceFrom(lat, lon float64) (float64, bool) {
	vLat, vLon, ok := s.Position()
	if !ok {
		return 0, false
	}
	return geo.NewPoint(vLat, vLon).GreatCircleDistance(geo.NewPoint(lat, lon)), true
}

// formatFloat renders the shortest decimal that round-trips, without an
// exponent: 21 -> "21", 21.5 -> "21.5".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
