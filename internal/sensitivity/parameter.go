package sensitivity

import (
	"fmt"
	"math"

	"vehicle-tco/internal/scenario"
)

// Parameter is one sweepable scenario input.
type Parameter string

const (
	ParamAnnualDistance   Parameter = "annual_distance_km"
	ParamDieselPrice      Parameter = "diesel_price"
	ParamElectricityPrice Parameter = "electricity_price"
	ParamVehicleLifetime  Parameter = "vehicle_lifetime_years"
	ParamDiscountRate     Parameter = "discount_rate"
	// ParamDistancePayload sweeps distance with payload adjustment switched on.
	ParamDistancePayload Parameter = "annual_distance_km_payload"
	// ParamExternalityCost is a percent change applied to every externality
	// rate. The scenario's own rates are the 0% base.
	ParamExternalityCost Parameter = "externality_cost_change"
)

// Parameters lists every sweepable parameter in display order.
var Parameters = []Parameter{
	ParamAnnualDistance,
	ParamDieselPrice,
	ParamElectricityPrice,
	ParamVehicleLifetime,
	ParamDiscountRate,
	ParamDistancePayload,
	ParamExternalityCost,
}

var labels = map[Parameter]string{
	ParamAnnualDistance:   "Annual Distance",
	ParamDieselPrice:      "Diesel Price",
	ParamElectricityPrice: "Electricity Price",
	ParamVehicleLifetime:  "Vehicle Lifetime",
	ParamDiscountRate:     "Discount Rate",
	ParamDistancePayload:  "Annual Distance with Payload Effect",
	ParamExternalityCost:  "Externality Costs",
}

// ParseParameter validates a parameter name such as "diesel_price".
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(s)
	if _, ok := labels[p]; !ok {
		return "", fmt.Errorf("unknown sensitivity parameter %q", s)
	}
	return p, nil
}

// Label is the human-readable name.
func (p Parameter) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return string(p)
}

// Unit is the unit of the swept value.
func (p Parameter) Unit() string {
	switch p {
	case ParamAnnualDistance, ParamDistancePayload:
		return "km/year"
	case ParamDieselPrice:
		return "AUD/L"
	case ParamElectricityPrice:
		return "AUD/kWh"
	case ParamVehicleLifetime:
		return "years"
	case ParamExternalityCost:
		return "% change"
	default:
		return "fraction"
	}
}

// BaseValue reads the parameter's current value from s. Prices are read at
// the first analysis year.
func BaseValue(p Parameter, s *scenario.Scenario) (float64, error) {
	switch p {
	case ParamAnnualDistance, ParamDistancePayload:
		return s.AnnualDistanceKm, nil
	case ParamDieselPrice:
		return s.Diesel.Lookup("diesel price", s.StartYear)
	case ParamElectricityPrice:
		return s.Electricity.Lookup("electricity price", s.StartYear)
	case ParamVehicleLifetime:
		return float64(s.Horizon), nil
	case ParamDiscountRate:
		return s.DiscountRate, nil
	case ParamExternalityCost:
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown sensitivity parameter %q", p)
	}
}

// Apply derives a scenario with p set to value. base is the value BaseValue
// returned for s; price parameters scale their whole series by value/base so
// the projection keeps its shape.
func Apply(p Parameter, s *scenario.Scenario, base, value float64) (*scenario.Scenario, error) {
	var edit func(*scenario.Scenario)
	switch p {
	case ParamAnnualDistance:
		edit = func(d *scenario.Scenario) { d.AnnualDistanceKm = value }
	case ParamDistancePayload:
		edit = func(d *scenario.Scenario) {
			d.AnnualDistanceKm = value
			d.PayloadAdjusted = true
		}
	case ParamDieselPrice:
		if base == 0 {
			return nil, fmt.Errorf("%s: cannot scale a zero base price", p)
		}
		edit = func(d *scenario.Scenario) { d.Diesel = d.Diesel.Scale(value / base) }
	case ParamElectricityPrice:
		if base == 0 {
			return nil, fmt.Errorf("%s: cannot scale a zero base price", p)
		}
		edit = func(d *scenario.Scenario) { d.Electricity = d.Electricity.Scale(value / base) }
	case ParamVehicleLifetime:
		years := int(math.Round(value))
		edit = func(d *scenario.Scenario) { d.Horizon = years }
	case ParamDiscountRate:
		edit = func(d *scenario.Scenario) { d.DiscountRate = value }
	case ParamExternalityCost:
		if base <= -100 {
			return nil, fmt.Errorf("%s: cannot scale from a %g%% base", p, base)
		}
		f := (1 + value/100) / (1 + base/100)
		edit = func(d *scenario.Scenario) {
			for _, rates := range d.Externalities {
				for i := range rates {
					rates[i].PerKm *= f
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown sensitivity parameter %q", p)
	}
	out, err := s.Derive(edit)
	if err != nil {
		return nil, fmt.Errorf("%s = %g: %w", p, value, err)
	}
	return out, nil
}
