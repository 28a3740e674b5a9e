package model

import (
	"errors"
	"math"
)

// DegradationModel blends cycle wear and calendar ageing into a remaining
// capacity fraction. Units:
// - CycleWeight, CalendarWeight: weights of the normalised ageing terms
// - EndOfLifeLoss: capacity fraction lost when both terms reach 1
//
// With the defaults a fully aged battery still holds 80% of nominal capacity.
type DegradationModel struct {
	CycleWeight    float64
	CalendarWeight float64
	EndOfLifeLoss  float64
}

// DefaultDegradation is the model used when a scenario does not set one.
var DefaultDegradation = DegradationModel{
	CycleWeight:    0.7,
	CalendarWeight: 0.3,
	EndOfLifeLoss:  0.2,
}

// Validate checks the weights sum to 1 and the loss is a fraction.
func (m DegradationModel) Validate() error {
	if m.CycleWeight < 0 || m.CalendarWeight < 0 {
		return errors.New("degradation weights must be >= 0")
	}
	if m.CycleWeight+m.CalendarWeight <= 0 {
		return errors.New("degradation weights must not both be 0")
	}
	if math.Abs(m.CycleWeight+m.CalendarWeight-1) > 1e-9 {
		return errors.New("degradation weights must sum to 1")
	}
	if m.EndOfLifeLoss < 0 || m.EndOfLifeLoss > 1 {
		return errors.New("end_of_life_loss must be in [0, 1]")
	}
	return nil
}

// IsZero reports whether the model was left unset.
func (m DegradationModel) IsZero() bool {
	return m == DegradationModel{}
}

// RemainingCapacity returns the usable capacity fraction of a battery after
// ageYears of service and cumulativeKm of driving.
//
// Grid energy drawn is km * kWh/km / charging efficiency; equivalent full
// cycles divide that by the usable capacity per cycle. A zero efficiency or
// zero usable capacity means no wear can be computed, so the battery is
// reported as new. A zero cycle life or lifespan drops that ageing term.
func (m DegradationModel) RemainingCapacity(spec ElectricSpec, lifespanYears int, ageYears, cumulativeKm float64) float64 {
	usablePerCycle := spec.BatteryCapacityKWh * spec.DepthOfDischarge
	if spec.ChargingEfficiency <= 0 || usablePerCycle <= 0 {
		return 1.0
	}
	drawnKWh := math.Max(0, cumulativeKm) * (spec.KWhPerKm / spec.ChargingEfficiency)
	cycles := drawnKWh / usablePerCycle

	cycleAging := 0.0
	if spec.CycleLife > 0 {
		cycleAging = math.Min(1, cycles/spec.CycleLife)
	}
	calendarAging := 0.0
	if lifespanYears > 0 {
		calendarAging = math.Min(1, math.Max(0, ageYears)/float64(lifespanYears))
	}

	combined := m.CycleWeight*cycleAging + m.CalendarWeight*calendarAging
	return clamp01(1 - combined*m.EndOfLifeLoss)
}

// EquivalentCycles is the number of full cycles implied by cumulativeKm.
func (spec ElectricSpec) EquivalentCycles(cumulativeKm float64) float64 {
	usablePerCycle := spec.BatteryCapacityKWh * spec.DepthOfDischarge
	if spec.ChargingEfficiency <= 0 || usablePerCycle <= 0 {
		return 0
	}
	return cumulativeKm * (spec.KWhPerKm / spec.ChargingEfficiency) / usablePerCycle
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
