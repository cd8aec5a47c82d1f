package client

import (
	"fmt"
	"time"
)

// endpointSpec describes one iRail endpoint's parameter schema.
type endpointSpec struct {
	// required parameters must all be present.
	required []string

	// xor groups demand exactly one of their members.
	xor []string

	// optional parameters may be present; anything else is rejected.
	optional []string
}

// Logical endpoint names of the iRail API.
const (
	EndpointStations     = "stations"
	EndpointLiveboard    = "liveboard"
	EndpointConnections  = "connections"
	EndpointVehicle      = "vehicle"
	EndpointComposition  = "composition"
	EndpointDisturbances = "disturbances"
)

// endpoints is the registry of known endpoints and their parameter rules,
// mirroring the upstream API documentation.
var endpoints = map[string]endpointSpec{
	EndpointStations: {},
	EndpointLiveboard: {
		xor:      []string{"station", "id"},
		optional: []string{"date", "time", "arrdep", "alerts"},
	},
	EndpointConnections: {
		required: []string{"from", "to"},
		optional: []string{"date", "time", "timesel", "typeOfTransport"},
	},
	EndpointVehicle: {
		required: []string{"id"},
		optional: []string{"date", "alerts"},
	},
	EndpointComposition: {
		required: []string{"id"},
		optional: []string{"data"},
	},
	EndpointDisturbances: {
		optional: []string{"lineBreakCharacter"},
	},
}

// validateParams checks the parameter set against the endpoint's schema:
// the endpoint must be known, required parameters present, exactly one of
// each xor group set, no unknown parameters, and date/time values well
// formed (DDMMYY / HHMM).
func validateParams(endpoint string, params map[string]string) error {
	spec, ok := endpoints[endpoint]
	if !ok {
		return fmt.Errorf("unknown endpoint %q", endpoint)
	}

	if date, ok := params["date"]; ok {
		if err := validateDate(date); err != nil {
			return err
		}
	}
	if tm, ok := params["time"]; ok {
		if err := validateTime(tm); err != nil {
			return err
		}
	}

	for _, p := range spec.required {
		if params[p] == "" {
			return fmt.Errorf("missing required parameter %q for endpoint %q", p, endpoint)
		}
	}

	if len(spec.xor) > 0 {
		set := 0
		for _, p := range spec.xor {
			if _, ok := params[p]; ok {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("exactly one of %v must be provided for endpoint %q", spec.xor, endpoint)
		}
	}

	for p := range params {
		if !contains(spec.required, p) && !contains(spec.xor, p) && !contains(spec.optional, p) {
			return fmt.Errorf("unexpected parameter %q for endpoint %q", p, endpoint)
		}
	}

	return nil
}

// validateDate accepts the upstream DDMMYY form, e.g. "150923".
func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse("020106", date); err != nil {
		return fmt.Errorf("invalid date %q, expected DDMMYY: %w", date, err)
	}
	return nil
}

// validateTime accepts the upstream HHMM form, e.g. "1430".
func validateTime(tm string) error {
	if tm == "" {
		return nil
	}
	if _, err := time.Parse("1504", tm); err != nil {
		return fmt.Errorf("invalid time %q, expected HHMM: %w", tm, err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
