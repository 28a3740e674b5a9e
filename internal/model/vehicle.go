package model

import (
	"fmt"
	"math"
	"sort"

	"vehicle-tco/internal/price"
)

// ValidationError names the vehicle field that violates a physical invariant.
type ValidationError struct {
	Vehicle string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vehicle %q: %s %s", e.Vehicle, e.Field, e.Reason)
}

// ResidualPoint is one point on a residual-value curve: the fraction of the
// purchase price retained at a given age.
type ResidualPoint struct {
	AgeYears float64 `json:"age_years" yaml:"age_years"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// ElectricSpec carries the BEV-only attributes.
// Units:
// - BatteryCapacityKWh: kWh nominal
// - KWhPerKm: kWh per km at the wheels (the billed energy)
// - CycleLife: equivalent full cycles to end of life
// - DepthOfDischarge, ChargingEfficiency: fractions 0..1
type ElectricSpec struct {
	BatteryCapacityKWh float64
	KWhPerKm           float64
	CycleLife          float64
	DepthOfDischarge   float64
	ChargingEfficiency float64
	// BatteryCost is the replacement cost per kWh by calendar year.
	BatteryCost *price.Series
}

// DieselSpec carries the diesel-only attributes.
type DieselSpec struct {
	LitresPer100Km float64
	CO2KgPerLitre  float64
}

// Vehicle is a tagged variant: Drivetrain selects which of Electric / Diesel
// is populated. Vehicles are read-only once built.
type Vehicle struct {
	ID            string
	Name          string
	Class         string
	Drivetrain    Drivetrain
	PurchasePrice float64
	LifespanYears int
	// RegistrationBase is the annual registration fee before escalation.
	RegistrationBase float64
	PayloadTonnes    float64
	Residual         []ResidualPoint

	Electric *ElectricSpec
	Diesel   *DieselSpec
}

// NewVehicle sorts the residual curve and validates the result.
func NewVehicle(v Vehicle) (*Vehicle, error) {
	out := v
	out.Residual = make([]ResidualPoint, len(v.Residual))
	copy(out.Residual, v.Residual)
	sort.Slice(out.Residual, func(i, j int) bool { return out.Residual[i].AgeYears < out.Residual[j].AgeYears })
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate rejects physically impossible values. It does not coerce.
func (v *Vehicle) Validate() error {
	bad := func(field, reason string) error {
		return &ValidationError{Vehicle: v.label(), Field: field, Reason: reason}
	}
	if v.PurchasePrice <= 0 || !finite(v.PurchasePrice) {
		return bad("purchase_price", "must be > 0")
	}
	if v.LifespanYears <= 0 {
		return bad("lifespan_years", "must be > 0")
	}
	if v.RegistrationBase < 0 || !finite(v.RegistrationBase) {
		return bad("registration_base", "must be >= 0")
	}
	if v.PayloadTonnes < 0 || !finite(v.PayloadTonnes) {
		return bad("payload_t", "must be >= 0")
	}
	if err := v.validateResidual(); err != nil {
		return err
	}

	switch v.Drivetrain {
	case DrivetrainBEV:
		e := v.Electric
		if e == nil {
			return bad("electric", "is required for a BEV")
		}
		if v.Diesel != nil {
			return bad("diesel", "must be empty for a BEV")
		}
		if e.KWhPerKm <= 0 || !finite(e.KWhPerKm) {
			return bad("kwh_per_km", "must be > 0")
		}
		if e.BatteryCapacityKWh <= 0 || !finite(e.BatteryCapacityKWh) {
			return bad("battery_capacity_kwh", "must be > 0")
		}
		// A battery that survives no cycles cannot be driven.
		if e.CycleLife <= 0 || !finite(e.CycleLife) {
			return bad("cycle_life", "must be > 0")
		}
		if !(e.DepthOfDischarge >= 0 && e.DepthOfDischarge <= 1) {
			return bad("depth_of_discharge", "must be in [0, 1]")
		}
		if !(e.ChargingEfficiency >= 0 && e.ChargingEfficiency <= 1) {
			return bad("charging_efficiency", "must be in [0, 1]")
		}
	case DrivetrainDiesel:
		d := v.Diesel
		if d == nil {
			return bad("diesel", "is required for a diesel vehicle")
		}
		if v.Electric != nil {
			return bad("electric", "must be empty for a diesel vehicle")
		}
		if d.LitresPer100Km <= 0 || !finite(d.LitresPer100Km) {
			return bad("litres_per_100km", "must be > 0")
		}
		if d.CO2KgPerLitre < 0 || !finite(d.CO2KgPerLitre) {
			return bad("co2_kg_per_litre", "must be >= 0")
		}
	default:
		return bad("drivetrain", fmt.Sprintf("%q is not supported", v.Drivetrain))
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (v *Vehicle) validateResidual() error {
	bad := func(reason string) error {
		return &ValidationError{Vehicle: v.label(), Field: "residual", Reason: reason}
	}
	if len(v.Residual) == 0 {
		return bad("curve is empty")
	}
	prev := 1.0
	for i, p := range v.Residual {
		if p.AgeYears < 0 || !finite(p.AgeYears) {
			return bad("ages must be >= 0")
		}
		if i > 0 && p.AgeYears == v.Residual[i-1].AgeYears {
			return bad(fmt.Sprintf("duplicate age %.2f", p.AgeYears))
		}
		if !(p.Fraction >= 0 && p.Fraction <= 1) {
			return bad("fractions must be in [0, 1]")
		}
		if p.Fraction > prev {
			return bad("fractions must be non-increasing with age")
		}
		prev = p.Fraction
	}
	if last := v.Residual[len(v.Residual)-1]; last.AgeYears < float64(v.LifespanYears) {
		return bad(fmt.Sprintf("must reach the end of lifespan (%d years)", v.LifespanYears))
	}
	return nil
}

func (v *Vehicle) label() string {
	if v.ID != "" {
		return v.ID
	}
	return v.Name
}

// Label is the identity used in logs and results.
func (v *Vehicle) Label() string { return v.label() }

// EnergyPerKm returns the billed energy per km and its unit.
func (v *Vehicle) EnergyPerKm() (float64, EnergyUnit) {
	switch v.Drivetrain {
	case DrivetrainBEV:
		return v.Electric.KWhPerKm, UnitKWh
	default:
		return v.Diesel.LitresPer100Km / 100, UnitLitre
	}
}

// AnnualEnergy is the energy bought for distanceKm of driving.
func (v *Vehicle) AnnualEnergy(distanceKm float64) float64 {
	perKm, _ := v.EnergyPerKm()
	return distanceKm * perKm
}

// AnnualEnergyCost prices AnnualEnergy at unitPrice ($/kWh or $/L).
func (v *Vehicle) AnnualEnergyCost(distanceKm, unitPrice float64) float64 {
	return v.AnnualEnergy(distanceKm) * unitPrice
}

// EmissionsKg returns tailpipe or grid CO2 for distanceKm of driving.
// gridKgPerKWh only applies to BEVs.
func (v *Vehicle) EmissionsKg(distanceKm, gridKgPerKWh float64) float64 {
	switch v.Drivetrain {
	case DrivetrainBEV:
		return v.AnnualEnergy(distanceKm) * gridKgPerKWh
	default:
		return v.AnnualEnergy(distanceKm) * v.Diesel.CO2KgPerLitre
	}
}

// ResidualFraction is the share of the purchase price retained at ageYears.
// The curve has an implicit (0, 1.0) anchor and stays flat past its last point.
func (v *Vehicle) ResidualFraction(ageYears float64) float64 {
	xs := make([]float64, 0, len(v.Residual)+1)
	ys := make([]float64, 0, len(v.Residual)+1)
	if len(v.Residual) == 0 || v.Residual[0].AgeYears > 0 {
		xs = append(xs, 0)
		ys = append(ys, 1)
	}
	for _, p := range v.Residual {
		xs = append(xs, p.AgeYears)
		ys = append(ys, p.Fraction)
	}
	return clamp01(price.Interpolate(xs, ys, math.Max(0, ageYears)))
}

// ResidualValue is the resale value in AUD at ageYears.
func (v *Vehicle) ResidualValue(ageYears float64) float64 {
	return v.ResidualFraction(ageYears) * v.PurchasePrice
}
