package snapshot

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulrichard/uttesla/tesla"
)

func loadVehicleData(t *testing.T, file string) *tesla.VehicleData {
	t.Helper()
	raw, err := os.ReadFile(file)
	require.NoError(t, err)

	var envelope struct {
		Response tesla.VehicleData `json:"response"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return &envelope.Response
}

func ptr(v float64) *float64 {
	return &v
}

func TestReduce(t *testing.T) {
	s := Reduce(loadVehicleData(t, "../tesla/testdata/vehicle-data.json"))

	assert.Equal(t, Snapshot{
		State:               "online",
		GPSPos:              "47.3769,8.5417",
		InsideTemp:          "21.5",
		OutsideTemp:         "8",
		DriverTempSetting:   22,
		HVACEnabled:         true,
		BatteryLevel:        76,
		BatteryRange:        160.9344,
		ChargeRate:          22.5,
		MinutesToFullCharge: 95,
		ChargeEnergyAdded:   12.34,
		ChargeLimit:         90,
	}, s)
}

func TestReduce_Nil(t *testing.T) {
	assert.Equal(t, Snapshot{
		DriverTempSetting: DefaultDriverTempSetting,
		ChargeLimit:       DefaultChargeLimit,
	}, Reduce(nil))
}

func TestReduce_NoSections(t *testing.T) {
	s := Reduce(loadVehicleData(t, "../tesla/testdata/vehicle-data-asleep.json"))

	assert.Equal(t, "asleep", s.State)
	assert.Empty(t, s.GPSPos)
	assert.Empty(t, s.InsideTemp)
	assert.Empty(t, s.OutsideTemp)
	assert.EqualValues(t, 20, s.DriverTempSetting)
	assert.False(t, s.HVACEnabled)
	assert.Zero(t, s.BatteryLevel)
	assert.Zero(t, s.BatteryRange)
	assert.Zero(t, s.ChargeRate)
	assert.Zero(t, s.MinutesToFullCharge)
	assert.Zero(t, s.ChargeEnergyAdded)
	assert.EqualValues(t, 80, s.ChargeLimit)
}

func TestReduce_PartialSections(t *testing.T) {
	tests := []struct {
		name string
		data *tesla.VehicleData
		want func(t *testing.T, s Snapshot)
	}{
		{
			name: "position without longitude",
			data: &tesla.VehicleData{DriveState: &tesla.DriveState{Latitude: ptr(47.5)}},
			want: func(t *testing.T, s Snapshot) {
				assert.Equal(t, "47.5,0", s.GPSPos)
			},
		},
		{
			name: "empty drive section",
			data: &tesla.VehicleData{DriveState: &tesla.DriveState{}},
			want: func(t *testing.T, s Snapshot) {
				assert.Equal(t, "0,0", s.GPSPos)
			},
		},
		{
			name: "climate without temperatures",
			data: &tesla.VehicleData{ClimateState: &tesla.ClimateState{DriverTempSetting: 19.9}},
			want: func(t *testing.T, s Snapshot) {
				assert.Empty(t, s.InsideTemp)
				assert.Empty(t, s.OutsideTemp)
				assert.EqualValues(t, 19, s.DriverTempSetting)
				assert.False(t, s.HVACEnabled)
			},
		},
		{
			name: "whole temperatures",
			data: &tesla.VehicleData{ClimateState: &tesla.ClimateState{InsideTemp: ptr(21.0), OutsideTemp: ptr(-3.25), FanStatus: 1}},
			want: func(t *testing.T, s Snapshot) {
				assert.Equal(t, "21", s.InsideTemp)
				assert.Equal(t, "-3.25", s.OutsideTemp)
				assert.EqualValues(t, 0, s.DriverTempSetting)
				assert.True(t, s.HVACEnabled)
			},
		},
		{
			name: "charge section only",
			data: &tesla.VehicleData{State: "online", ChargeState: &tesla.ChargeState{IdealBatteryRange: 100.0, ChargeLimitSoc: 55}},
			want: func(t *testing.T, s Snapshot) {
				assert.Equal(t, 160.9344, s.BatteryRange)
				assert.EqualValues(t, 55, s.ChargeLimit)
				assert.EqualValues(t, 20, s.DriverTempSetting)
				assert.Empty(t, s.GPSPos)
			},
		},
		{
			name: "charge section without limit",
			data: &tesla.VehicleData{ChargeState: &tesla.ChargeState{BatteryLevel: 64}},
			want: func(t *testing.T, s Snapshot) {
				// the default only applies when the whole section is missing
				assert.EqualValues(t, 64, s.BatteryLevel)
				assert.EqualValues(t, 0, s.ChargeLimit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Reduce(tt.data))
		})
	}
}

func TestSnapshot_JSON(t *testing.T) {
	s := Reduce(loadVehicleData(t, "../tesla/testdata/vehicle-data.json"))

	out, err := s.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"state": "online",
		"gps_pos": "47.3769,8.5417",
		"inside_temp": "21.5",
		"outside_temp": "8",
		"driver_temp_setting": 22,
		"hvac_enabled": true,
		"battery_level": 76,
		"battery_range": 160.9344,
		"charge_rate": 22.5,
		"minutes_to_full_charge": 95,
		"charge_energy_added": 12.34,
		"charge_limit": 90
	}`, out)
}

func TestSnapshot_JSON_FieldSet(t *testing.T) {
	out, err := Reduce(nil).JSON()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Len(t, fields, 12)
	for _, key := range []string{
		"state", "gps_pos", "inside_temp", "outside_temp", "driver_temp_setting", "hvac_enabled",
		"battery_level", "battery_range", "charge_rate", "minutes_to_full_charge", "charge_energy_added", "charge_limit",
	} {
		assert.Contains(t, fields, key)
	}
	assert.EqualValues(t, 20, fields["driver_temp_setting"])
	assert.EqualValues(t, 80, fields["charge_limit"])
	assert.Equal(t, false, fields["hvac_enabled"])
}

func TestSnapshot_Position(t *testing.T) {
	lat, lon, ok := Snapshot{GPSPos: "47.3769,8.5417"}.Position()
	assert.True(t, ok)
	assert.Equal(t, 47.3769, lat)
	assert.Equal(t, 8.5417, lon)

	_, _, ok = Snapshot{}.Position()
	assert.False(t, ok)

	_, _, ok = Snapshot{GPSPos: "north,east"}.Position()
	assert.False(t, ok)
}

func TestSnapshot_DistanceFrom(t *testing.T) {
	s := Snapshot{GPSPos: "47,8"}

	d, ok := s.DistanceFrom(47, 8)
	assert.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)

	d, ok = s.DistanceFrom(48, 8)
	assert.True(t, ok)
	assert.InDelta(t, 111.2, d, 0.5)

	_, ok = Snapshot{}.DistanceFrom(47, 8)
	assert.False(t, ok)
}
