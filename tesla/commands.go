package tesla

import (
	"context"
	"fmt"
	"net/http"
)

type commandResult struct {
	Result bool   `json:"result"`
	Reason string `json:"reason"`
}

type setTempsRequest struct {
	DriverTemp    float64 `json:"driver_temp"`
	PassengerTemp float64 `json:"passenger_temp"`
}

type setChargeLimitRequest struct {
	Percent int `json:"percent"`
}

func (c *Client) command(ctx context.Context, id VehicleID, name string, body any) error {
	log.Debugf("command %s on vehicle %s", name, id)
	var result commandResult
	if err := c.do(ctx, http.MethodPost, "/api/1/vehicles/"+id.String()+"/command/"+name, body, &result); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !result.Result {
		return &CommandError{Command: name, Reason: result.Reason}
	}
	return nil
}

// SetTemps sets the driver and passenger target temperatures in °C.
func (c *Client) SetTemps(ctx context.Context, id VehicleID, driver, passenger float64) error {
	return c.command(ctx, id, "set_temps", setTempsRequest{DriverTemp: driver, PassengerTemp: passenger})
}

func (c *Client) AutoConditioningStart(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "auto_conditioning_start", nil)
}

func (c *Client) AutoConditioningStop(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "auto_conditioning_stop", nil)
}

func (c *Client) DoorLock(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "door_lock", nil)
}

func (c *Client) DoorUnlock(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "door_unlock", nil)
}

// SetChargeLimit sets the charge limit in percent. The value is forwarded
// unchecked.
func (c *Client) SetChargeLimit(ctx context.Context, id VehicleID, percent int) error {
	return c.command(ctx, id, "set_charge_limit", setChargeLimitRequest{Percent: percent})
}

func (c *Client) ChargeStart(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "charge_start", nil)
}

func (c *Client) ChargeStop(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "charge_stop", nil)
}

func (c *Client) HonkHorn(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "honk_horn", nil)
}

func (c *Client) FlashLights(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "flash_lights", nil)
}

// RemoteStartDrive enables keyless driving for two minutes.
func (c *Client) RemoteStartDrive(ctx context.Context, id VehicleID) error {
	return c.command(ctx, id, "remote_start_drive", nil)
}
