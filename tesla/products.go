package tesla

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// VehicleID is the identifier used in /api/1/vehicles/{id} paths.
type VehicleID int64

func (id VehicleID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Vehicle struct {
	ID          VehicleID `json:"id"`
	VehicleID   int64     `json:"vehicle_id"`
	VIN         string    `json:"vin"`
	DisplayName string    `json:"display_name"`
	State       string    `json:"state"`
	InService   bool      `json:"in_service"`
}

type EnergySite struct {
	EnergySiteID int64  `json:"energy_site_id"`
	ResourceType string `json:"resource_type"`
	SiteName     string `json:"site_name"`
}

// Product is one entry of the account's product list. Exactly one of
// Vehicle and EnergySite is set.
type Product struct {
	Vehicle    *Vehicle
	EnergySite *EnergySite
}

func (p Product) IsVehicle() bool {
	return p.Vehicle != nil
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	// only vehicles carry a vehicle_id
	if _, ok := fields["vehicle_id"]; ok {
		var v Vehicle
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		p.Vehicle = &v
		return nil
	}
	var site EnergySite
	if err := json.Unmarshal(data, &site); err != nil {
		return err
	}
	p.EnergySite = &site
	return nil
}

// Products lists every product registered to the account, in service order.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/api/1/products", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
