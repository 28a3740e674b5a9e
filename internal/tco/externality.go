package tco

import (
	"sort"

	"vehicle-tco/internal/cost"
	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
)

// ExternalityItem is one pollutant's social cost for a vehicle.
type ExternalityItem struct {
	Pollutant string
	PerKm     float64
	// Cost is the discounted cost over the horizon in AUD.
	Cost float64
}

// externalities prices the vehicle's pollutants at distanceKm a year. The
// total per km is the PollutantTotal rate when one is given, otherwise the
// sum of the listed rates. ok is false when the scenario has no rates for
// the vehicle.
func externalities(v *model.Vehicle, s *scenario.Scenario, distanceKm float64) (perKm, npv float64, items []ExternalityItem, ok bool) {
	rates, ok := s.ExternalityRates(v.Class, v.Drivetrain)
	if !ok {
		return 0, 0, nil, false
	}
	annuity := 0.0
	for idx := 0; idx < s.Horizon; idx++ {
		annuity += DiscountFactor(s.DiscountRate, idx)
	}

	sum, total, haveTotal := 0.0, 0.0, false
	for _, r := range rates {
		if r.Pollutant == scenario.PollutantTotal {
			total, haveTotal = r.PerKm, true
			continue
		}
		sum += r.PerKm
		items = append(items, ExternalityItem{
			Pollutant: r.Pollutant,
			PerKm:     r.PerKm,
			Cost:      r.PerKm * distanceKm * annuity,
		})
	}
	if !haveTotal {
		total = sum
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Pollutant < items[j].Pollutant })
	return total, total * distanceKm * annuity, items, true
}

// operatingKinds are the recurring running costs. Acquisition, charging
// infrastructure, battery replacement and resale are excluded.
var operatingKinds = map[cost.Kind]bool{
	cost.KindEnergy:         true,
	cost.KindMaintenance:    true,
	cost.KindInsurance:      true,
	cost.KindRegistration:   true,
	cost.KindCarbonTax:      true,
	cost.KindRoadUserCharge: true,
}

// operatingCost sums the operating columns of t.
func operatingCost(t *Table) float64 {
	sum := 0.0
	for j, k := range t.Columns {
		if !operatingKinds[k] {
			continue
		}
		for _, r := range t.Rows {
			sum += r.Values[j]
		}
	}
	return sum
}
