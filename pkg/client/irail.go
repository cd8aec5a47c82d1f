package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beltransit/irail-go/pkg/models"
)

// LiveboardOptions selects the liveboard to fetch. Provide exactly one of
// Station or ID.
type LiveboardOptions struct {
	Station string // station name, e.g. "Brussels-South"
	ID      string // station identifier, e.g. "BE.NMBS.008814001"
	Date    string // DDMMYY, defaults to today
	Time    string // HHMM, defaults to now
	ArrDep  string // "departure" (default) or "arrival"
	Alerts  bool
}

// ConnectionsOptions selects the journeys to fetch between two stations.
type ConnectionsOptions struct {
	Date            string // DDMMYY
	Time            string // HHMM
	TimeSel         string // "departure" (default) or "arrival"
	TypeOfTransport string // automatic, trains, nointernationaltrains or all
}

// VehicleOptions refine a vehicle lookup.
type VehicleOptions struct {
	Date   string // DDMMYY
	Alerts bool
}

// GetStations retrieves the full list of stations.
func (c *Client) GetStations(ctx context.Context) (*models.StationsResponse, error) {
	return decode[models.StationsResponse](c, ctx, EndpointStations, nil)
}

// GetLiveboard retrieves live departures or arrivals for one station.
func (c *Client) GetLiveboard(ctx context.Context, opts LiveboardOptions) (*models.LiveboardResponse, error) {
	params := map[string]string{}
	if opts.Station != "" {
		params["station"] = opts.Station
	}
	if opts.ID != "" {
		params["id"] = opts.ID
	}
	if opts.Date != "" {
		params["date"] = opts.Date
	}
	if opts.Time != "" {
		params["time"] = opts.Time
	}
	arrdep := opts.ArrDep
	if arrdep == "" {
		arrdep = "departure"
	}
	params["arrdep"] = arrdep
	params["alerts"] = boolParam(opts.Alerts)

	return decode[models.LiveboardResponse](c, ctx, EndpointLiveboard, params)
}

// GetConnections retrieves journeys between two stations.
func (c *Client) GetConnections(ctx context.Context, from, to string, opts ConnectionsOptions) (*models.ConnectionsResponse, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if opts.Date != "" {
		params["date"] = opts.Date
	}
	if opts.Time != "" {
		params["time"] = opts.Time
	}
	timesel := opts.TimeSel
	if timesel == "" {
		timesel = "departure"
	}
	params["timesel"] = timesel
	transport := opts.TypeOfTransport
	if transport == "" {
		transport = "automatic"
	}
	params["typeOfTransport"] = transport

	return decode[models.ConnectionsResponse](c, ctx, EndpointConnections, params)
}

// GetVehicle retrieves one train and its stops.
func (c *Client) GetVehicle(ctx context.Context, id string, opts VehicleOptions) (*models.VehicleResponse, error) {
	params := map[string]string{
		"id":     id,
		"alerts": boolParam(opts.Alerts),
	}
	if opts.Date != "" {
		params["date"] = opts.Date
	}

	return decode[models.VehicleResponse](c, ctx, EndpointVehicle, params)
}

// GetComposition retrieves the composition of one train. Set data to "all"
// for the raw unfiltered upstream data.
func (c *Client) GetComposition(ctx context.Context, id string, data string) (*models.CompositionResponse, error) {
	params := map[string]string{"id": id}
	if data != "" {
		params["data"] = data
	}

	return decode[models.CompositionResponse](c, ctx, EndpointComposition, params)
}

// GetDisturbances retrieves current disruptions on the rail network.
func (c *Client) GetDisturbances(ctx context.Context, lineBreakCharacter string) (*models.DisturbancesResponse, error) {
	params := map[string]string{}
	if lineBreakCharacter != "" {
		params["lineBreakCharacter"] = lineBreakCharacter
	}

	return decode[models.DisturbancesResponse](c, ctx, EndpointDisturbances, params)
}

// decode runs one logical call and unmarshals the payload into T.
func decode[T any](c *Client, ctx context.Context, endpoint string, params map[string]string) (*T, error) {
	body, err := c.Execute(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return &out, nil
}

func boolParam(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
