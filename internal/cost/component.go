package cost

import (
	"fmt"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
)

// Kind identifies one cost component. Values appear as CSV and JSON column
// names; keep them stable.
type Kind string

const (
	KindAcquisition        Kind = "acquisition"
	KindEnergy             Kind = "energy"
	KindMaintenance        Kind = "maintenance"
	KindInfrastructure     Kind = "infrastructure"
	KindBatteryReplacement Kind = "battery_replacement"
	KindInsurance          Kind = "insurance"
	KindRegistration       Kind = "registration"
	KindCarbonTax          Kind = "carbon_tax"
	KindRoadUserCharge     Kind = "road_user_charge"
	KindResidualValue      Kind = "residual_value"
)

// Order is the column order of an itemised breakdown. Residual value is last
// so the end-of-horizon credit reads separately from costs.
var Order = []Kind{
	KindAcquisition,
	KindEnergy,
	KindMaintenance,
	KindInfrastructure,
	KindBatteryReplacement,
	KindInsurance,
	KindRegistration,
	KindCarbonTax,
	KindRoadUserCharge,
	KindResidualValue,
}

// MissingDataError means a component needs data the inputs do not carry.
// It is fatal for the calculation.
type MissingDataError struct {
	Kind    Kind
	Vehicle string
	Err     error
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s for %s: missing data: %v", e.Kind, e.Vehicle, e.Err)
}

func (e *MissingDataError) Unwrap() error { return e.Err }

// Input is everything one component sees for one year.
type Input struct {
	Year      int
	YearIndex int
	// DistanceKm is driven during this year.
	DistanceKm float64
	// CumulativeKm is driven before this year.
	CumulativeKm float64

	Vehicle  *model.Vehicle
	Scenario *scenario.Scenario
}

// RunState carries once-only events across the years of a single
// (vehicle, scenario) run. Create a fresh one per run; never share it
// between runs.
type RunState struct {
	BatteryReplaced      bool
	ReplacementYearIndex int
	// InfrastructureInstalls counts capital charges, including renewals.
	InfrastructureInstalls int
}

// NewRunState returns state for a run with no replacement yet.
func NewRunState() *RunState {
	return &RunState{ReplacementYearIndex: -1}
}

// Component is one row of the dispatch table.
type Component struct {
	Kind Kind
	// Applies decides once per (vehicle, scenario) whether the component runs.
	Applies func(v *model.Vehicle, s *scenario.Scenario) bool
	// Check, if set, verifies required data before the annual loop.
	Check func(v *model.Vehicle, s *scenario.Scenario) error
	// Cost returns one year's cost in AUD; credits are negative.
	Cost func(in Input, st *RunState) (float64, error)
}

var table = map[Kind]Component{
	KindAcquisition:        {Kind: KindAcquisition, Applies: always, Cost: acquisitionCost},
	KindEnergy:             {Kind: KindEnergy, Applies: always, Cost: energyCost},
	KindMaintenance:        {Kind: KindMaintenance, Applies: always, Check: checkMaintenance, Cost: maintenanceCost},
	KindInfrastructure:     {Kind: KindInfrastructure, Applies: isBEV, Cost: infrastructureCost},
	KindBatteryReplacement: {Kind: KindBatteryReplacement, Applies: replacesBattery, Check: checkBatteryCost, Cost: batteryReplacementCost},
	KindInsurance:          {Kind: KindInsurance, Applies: always, Check: checkInsurance, Cost: insuranceCost},
	KindRegistration:       {Kind: KindRegistration, Applies: always, Cost: registrationCost},
	KindCarbonTax:          {Kind: KindCarbonTax, Applies: paysCarbonTax, Cost: carbonTaxCost},
	KindRoadUserCharge:     {Kind: KindRoadUserCharge, Applies: paysRoadUserCharge, Cost: roadUserChargeCost},
	KindResidualValue:      {Kind: KindResidualValue, Applies: always, Cost: residualValueCost},
}

// Lookup returns the dispatch entry for a kind.
func Lookup(k Kind) (Component, bool) {
	c, ok := table[k]
	return c, ok
}

// Select returns the applicable components for a vehicle under a scenario, in
// Order. A failed Check is returned as a MissingDataError.
func Select(v *model.Vehicle, s *scenario.Scenario) ([]Component, error) {
	out := make([]Component, 0, len(Order))
	for _, k := range Order {
		c := table[k]
		if !c.Applies(v, s) {
			continue
		}
		if c.Check != nil {
			if err := c.Check(v, s); err != nil {
				return nil, &MissingDataError{Kind: k, Vehicle: v.Label(), Err: err}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Applicable reports whether kind k runs for v under s.
func Applicable(k Kind, v *model.Vehicle, s *scenario.Scenario) bool {
	c, ok := table[k]
	return ok && c.Applies(v, s)
}

func always(*model.Vehicle, *scenario.Scenario) bool { return true }

func isBEV(v *model.Vehicle, _ *scenario.Scenario) bool {
	return v.Drivetrain == model.DrivetrainBEV
}

func replacesBattery(v *model.Vehicle, s *scenario.Scenario) bool {
	return isBEV(v, s) && s.Battery.Enabled
}

func paysCarbonTax(v *model.Vehicle, s *scenario.Scenario) bool {
	return v.Drivetrain == model.DrivetrainDiesel && s.CarbonTax.Enabled
}

func paysRoadUserCharge(_ *model.Vehicle, s *scenario.Scenario) bool {
	return s.RoadUserCharge.Enabled
}
