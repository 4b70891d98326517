package tesla

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// vehicleDataEndpoints are requested explicitly; newer firmware omits the
// position unless location_data is asked for.
const vehicleDataEndpoints = "charge_state;climate_state;closures_state;drive_state;gui_settings;location_data;vehicle_config;vehicle_state"

// VehicleData is the full vehicle_data payload. Every section is optional;
// the service leaves out whatever the car did not report.
type VehicleData struct {
	ID           VehicleID     `json:"id"`
	VehicleID    int64         `json:"vehicle_id"`
	VIN          string        `json:"vin"`
	DisplayName  string        `json:"display_name"`
	State        string        `json:"state"`
	ChargeState  *ChargeState  `json:"charge_state,omitempty"`
	ClimateState *ClimateState `json:"climate_state,omitempty"`
	DriveState   *DriveState   `json:"drive_state,omitempty"`
	VehicleState *VehicleState `json:"vehicle_state,omitempty"`
}

type ChargeState struct {
	BatteryLevel        int64   `json:"battery_level"`
	UsableBatteryLevel  int64   `json:"usable_battery_level"`
	BatteryRange        float64 `json:"battery_range"`       // miles
	EstBatteryRange     float64 `json:"est_battery_range"`   // miles
	IdealBatteryRange   float64 `json:"ideal_battery_range"` // miles
	ChargeLimitSoc      int64   `json:"charge_limit_soc"`
	ChargeLimitSocMin   int64   `json:"charge_limit_soc_min"`
	ChargeLimitSocMax   int64   `json:"charge_limit_soc_max"`
	ChargingState       string  `json:"charging_state"` // Disconnected, Stopped, Charging, Complete
	ChargeRate          float64 `json:"charge_rate"`
	ChargerPower        int64   `json:"charger_power"` // kW
	ChargeEnergyAdded   float64 `json:"charge_energy_added"`
	MinutesToFullCharge int64   `json:"minutes_to_full_charge"`
	ChargePortDoorOpen  bool    `json:"charge_port_door_open"`
	Timestamp           int64   `json:"timestamp"`
}

type ClimateState struct {
	InsideTemp           *float64 `json:"inside_temp,omitempty"`
	OutsideTemp          *float64 `json:"outside_temp,omitempty"`
	DriverTempSetting    float64  `json:"driver_temp_setting"`
	PassengerTempSetting float64  `json:"passenger_temp_setting"`
	IsAutoConditioningOn bool     `json:"is_auto_conditioning_on"`
	IsClimateOn          bool     `json:"is_climate_on"`
	IsPreconditioning    bool     `json:"is_preconditioning"`
	FanStatus            int64    `json:"fan_status"`
	Timestamp            int64    `json:"timestamp"`
}

type DriveState struct {
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Heading    int64    `json:"heading"`
	GpsAsOf    int64    `json:"gps_as_of"`
	Speed      *int64   `json:"speed,omitempty"`
	Power      int64    `json:"power"`
	ShiftState *string  `json:"shift_state,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

type VehicleState struct {
	Locked        bool    `json:"locked"`
	Odometer      float64 `json:"odometer"` // miles
	SentryMode    bool    `json:"sentry_mode"`
	IsUserPresent bool    `json:"is_user_present"`
	CarVersion    string  `json:"car_version"`
	VehicleName   string  `json:"vehicle_name"`
	Timestamp     int64   `json:"timestamp"`
}

// WakeUp asks the vehicle to come online. The service answers immediately;
// the returned state is usually still "asleep" for a few seconds.
func (c *Client) WakeUp(ctx context.Context, id VehicleID) (*Vehicle, error) {
	var v Vehicle
	if err := c.do(ctx, http.MethodPost, "/api/1/vehicles/"+id.String()+"/wake_up", nil, &v); err != nil {
		return nil, fmt.Errorf("wake up %s: %w", id, err)
	}
	log.Debugf("vehicle %s state after wake up: %s", id, v.State)
	return &v, nil
}

// VehicleData fetches the complete state of a vehicle.
func (c *Client) VehicleData(ctx context.Context, id VehicleID) (*VehicleData, error) {
	path := "/api/1/vehicles/" + id.String() + "/vehicle_data?endpoints=" + url.QueryEscape(vehicleDataEndpoints)
	var data VehicleData
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("vehicle data %s: %w", id, err)
	}
	return &data, nil
}
