package scenario

import (
	"fmt"
	"math"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/price"
)

// ErrUnknownPriceScenario is wrapped when a selected price scenario is not in
// the supplied tables.
var ErrUnknownPriceScenario = price.ErrUnknownScenario

// ConfigError is a fatal scenario configuration error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scenario config: %s %s", e.Field, e.Reason)
}

// FinancingMethod selects how the purchase is paid for.
type FinancingMethod string

const (
	FinancingCash FinancingMethod = "cash"
	FinancingLoan FinancingMethod = "loan"
)

// Financing is the acquisition payment plan.
type Financing struct {
	Method FinancingMethod
	// DownPaymentFraction is the share of the purchase price paid at index 0
	// when Method is loan.
	DownPaymentFraction float64
	LoanTermYears       int
	LoanRate            float64
}

// Infrastructure describes BEV charging capital. Costs are shared across
// FleetSize vehicles; ServiceLifeYears > 0 renews the capital cost.
type Infrastructure struct {
	ChargerHardware  float64
	Installation     float64
	MaintenanceRate  float64
	ServiceLifeYears int
	FleetSize        int
}

// CostBand is an annual (min, max) cost range.
type CostBand struct {
	Min float64
	Max float64
}

// Mid is the band midpoint.
func (b CostBand) Mid() float64 { return (b.Min + b.Max) / 2 }

// ClassKey selects a per-class, per-drivetrain entry such as a maintenance
// band or a set of externality rates.
type ClassKey struct {
	Class      string
	Drivetrain model.Drivetrain
}

// InsuranceMethod selects how insurance premiums are priced.
type InsuranceMethod string

const (
	InsuranceFixed           InsuranceMethod = "fixed"
	InsuranceResidualPercent InsuranceMethod = "residual_percent"
)

// InsuranceRule prices insurance either as a fixed amount or as a fraction of
// the current residual value.
type InsuranceRule struct {
	Method  InsuranceMethod
	Amount  float64
	Percent float64
}

// Escalation holds annual escalation rates compounded over the year index.
type Escalation struct {
	Maintenance  float64
	Insurance    float64
	Registration float64
}

// BatteryPolicy gates BEV battery replacement.
type BatteryPolicy struct {
	Enabled bool
	// Threshold is the remaining capacity fraction at or below which the
	// battery is replaced.
	Threshold float64
	// ForcedYearIndex replaces the battery at this index regardless of wear.
	ForcedYearIndex *int
}

// Charge is a policy-gated per-year rate (carbon tax in AUD/t, road user
// charge in AUD/km). Unless Authored is set, the schedule is generated as
// Base*(1+Escalation)^i across the horizon.
type Charge struct {
	Enabled    bool
	Base       float64
	Escalation float64
	Authored   *price.Series

	series *price.Series
}

// Series is the resolved schedule. It is nil until the scenario is built.
func (c Charge) Series() *price.Series { return c.series }

// Incentives are BEV-only purchase incentives.
type Incentives struct {
	// PurchaseRebate reduces the financed purchase price (AUD).
	PurchaseRebate float64
	// RegistrationExemption is the fraction of registration waived.
	RegistrationExemption float64
	// ChargerSubsidy is the fraction of charger capital covered.
	ChargerSubsidy float64
}

// PollutantTotal names an aggregate rate. When present it replaces the sum of
// the individual pollutant rates for that vehicle.
const PollutantTotal = "total"

// ExternalityRate is the social cost of one pollutant in AUD per km driven.
type ExternalityRate struct {
	Pollutant string
	PerKm     float64
}

// Params are the plain scenario inputs.
type Params struct {
	Name             string
	StartYear        int
	Horizon          int
	DiscountRate     float64
	AnnualDistanceKm float64

	Financing      Financing
	Infrastructure Infrastructure
	Maintenance    map[ClassKey]CostBand
	Insurance      map[model.Drivetrain]InsuranceRule
	Escalation     Escalation

	Battery     BatteryPolicy
	Degradation model.DegradationModel

	CarbonTax      Charge
	RoadUserCharge Charge

	// GridEmissionFactor is kg CO2 per kWh drawn by a BEV.
	GridEmissionFactor float64
	Incentives         Incentives
	// Externalities prices pollutants per vehicle class and drivetrain. A
	// vehicle without an entry has no externality cost.
	Externalities map[ClassKey][]ExternalityRate
	// PayloadAdjusted scales each vehicle's distance so both move the same
	// freight.
	PayloadAdjusted bool
}

// Scenario is Params plus resolved energy price series. Treat it as
// read-only; use Derive to build a variant.
type Scenario struct {
	Params
	Electricity *price.Series
	Diesel      *price.Series
}

// PriceSelection picks a named projection from a table set. A non-empty
// BlendWith resolves the year-by-year mean of both names.
//
// ChargingMix instead weights several tables by share, e.g. depot, public
// and time-of-use tariffs. Shares are normalised and it cannot be combined
// with Scenario or BlendWith.
type PriceSelection struct {
	Tables      price.Tables
	Scenario    string
	BlendWith   string
	ChargingMix map[string]float64
}

func (p PriceSelection) resolve() (*price.Series, error) {
	if len(p.ChargingMix) > 0 {
		if p.Scenario != "" || p.BlendWith != "" {
			return nil, &ConfigError{Field: "charging_mix", Reason: "cannot be combined with scenario or blend_with"}
		}
		return p.Tables.ResolveMix(p.ChargingMix)
	}
	if p.BlendWith != "" {
		return p.Tables.ResolvePair(p.Scenario, p.BlendWith)
	}
	return p.Tables.Resolve(p.Scenario)
}

// Build resolves the selected electricity and diesel scenarios and validates
// the result.
func Build(p Params, electricity, diesel PriceSelection) (*Scenario, error) {
	e, err := electricity.resolve()
	if err != nil {
		return nil, fmt.Errorf("electricity prices: %w", err)
	}
	d, err := diesel.resolve()
	if err != nil {
		return nil, fmt.Errorf("diesel prices: %w", err)
	}
	return New(p, e, d)
}

// New builds a scenario from already-resolved price series.
func New(p Params, electricity, diesel *price.Series) (*Scenario, error) {
	s := &Scenario{Params: p, Electricity: electricity, Diesel: diesel}
	if err := s.finalize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Derive copies the scenario, applies edit to the copy and re-validates it.
// The receiver is never modified.
func (s *Scenario) Derive(edit func(*Scenario)) (*Scenario, error) {
	out := *s
	out.Maintenance = make(map[ClassKey]CostBand, len(s.Maintenance))
	for k, v := range s.Maintenance {
		out.Maintenance[k] = v
	}
	out.Insurance = make(map[model.Drivetrain]InsuranceRule, len(s.Insurance))
	for k, v := range s.Insurance {
		out.Insurance[k] = v
	}
	if s.Externalities != nil {
		out.Externalities = make(map[ClassKey][]ExternalityRate, len(s.Externalities))
		for k, v := range s.Externalities {
			out.Externalities[k] = append([]ExternalityRate(nil), v...)
		}
	}
	if s.Battery.ForcedYearIndex != nil {
		idx := *s.Battery.ForcedYearIndex
		out.Battery.ForcedYearIndex = &idx
	}
	if edit != nil {
		edit(&out)
	}
	if err := out.finalize(); err != nil {
		return nil, err
	}
	return &out, nil
}

// finalize applies defaults, validates, and regenerates the charge schedules
// for the current horizon.
func (s *Scenario) finalize() error {
	if s.Degradation.IsZero() {
		s.Degradation = model.DefaultDegradation
	}
	if s.Infrastructure.FleetSize == 0 {
		s.Infrastructure.FleetSize = 1
	}
	if s.Financing.Method == "" {
		s.Financing.Method = FinancingCash
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, c := range []*Charge{&s.CarbonTax, &s.RoadUserCharge} {
		if c.Authored != nil {
			c.series = c.Authored
			continue
		}
		series, err := price.Escalating(c.Base, c.Escalation, s.StartYear, s.Horizon)
		if err != nil {
			return err
		}
		c.series = series
	}
	return nil
}

// Validate checks the scenario invariants.
func (s *Scenario) Validate() error {
	bad := func(field, reason string) error { return &ConfigError{Field: field, Reason: reason} }

	if s.Horizon < 1 {
		return bad("horizon", "must be >= 1")
	}
	if s.DiscountRate < 0 || !finite(s.DiscountRate) {
		return bad("discount_rate", "must be >= 0")
	}
	if s.AnnualDistanceKm < 0 || !finite(s.AnnualDistanceKm) {
		return bad("annual_distance_km", "must be >= 0")
	}
	if s.Electricity == nil {
		return bad("electricity_prices", "must be set")
	}
	if s.Diesel == nil {
		return bad("diesel_prices", "must be set")
	}

	f := s.Financing
	switch f.Method {
	case FinancingCash:
	case FinancingLoan:
		if f.DownPaymentFraction < 0 || f.DownPaymentFraction > 1 {
			return bad("financing.down_payment", "must be in [0, 1]")
		}
		if f.LoanTermYears < 1 {
			return bad("financing.loan_term_years", "must be >= 1")
		}
		if f.LoanRate < 0 {
			return bad("financing.loan_rate", "must be >= 0")
		}
	default:
		return bad("financing.method", fmt.Sprintf("%q is not cash or loan", f.Method))
	}

	in := s.Infrastructure
	if in.ChargerHardware < 0 || in.Installation < 0 || in.MaintenanceRate < 0 {
		return bad("infrastructure", "costs must be >= 0")
	}
	if in.ServiceLifeYears < 0 {
		return bad("infrastructure.service_life_years", "must be >= 0")
	}
	if in.FleetSize < 1 {
		return bad("infrastructure.fleet_size", "must be >= 1")
	}

	for k, b := range s.Maintenance {
		if b.Min < 0 || b.Max < b.Min {
			return bad("maintenance", fmt.Sprintf("band for %s/%s must satisfy 0 <= min <= max", k.Class, k.Drivetrain))
		}
	}
	for d, r := range s.Insurance {
		switch r.Method {
		case InsuranceFixed:
			if r.Amount < 0 {
				return bad("insurance", fmt.Sprintf("%s amount must be >= 0", d))
			}
		case InsuranceResidualPercent:
			if r.Percent < 0 {
				return bad("insurance", fmt.Sprintf("%s percent must be >= 0", d))
			}
		default:
			return bad("insurance", fmt.Sprintf("%s method %q is not supported", d, r.Method))
		}
	}

	b := s.Battery
	if b.Threshold < 0 || b.Threshold > 1 {
		return bad("battery_replacement.threshold", "must be in [0, 1]")
	}
	if b.ForcedYearIndex != nil && (*b.ForcedYearIndex < 0 || *b.ForcedYearIndex >= s.Horizon) {
		return bad("battery_replacement.forced_year_index", fmt.Sprintf("must be in [0, %d)", s.Horizon))
	}
	if err := s.Degradation.Validate(); err != nil {
		return bad("degradation", err.Error())
	}

	inc := s.Incentives
	if inc.PurchaseRebate < 0 {
		return bad("incentives.purchase_rebate", "must be >= 0")
	}
	if inc.RegistrationExemption < 0 || inc.RegistrationExemption > 1 {
		return bad("incentives.registration_exemption", "must be in [0, 1]")
	}
	if inc.ChargerSubsidy < 0 || inc.ChargerSubsidy > 1 {
		return bad("incentives.charger_subsidy", "must be in [0, 1]")
	}
	if s.GridEmissionFactor < 0 {
		return bad("grid_emission_factor", "must be >= 0")
	}
	for k, rates := range s.Externalities {
		seen := make(map[string]bool, len(rates))
		for _, r := range rates {
			if r.Pollutant == "" {
				return bad("externalities", fmt.Sprintf("%s/%s has a rate without a pollutant", k.Class, k.Drivetrain))
			}
			if seen[r.Pollutant] {
				return bad("externalities", fmt.Sprintf("%s/%s lists %s twice", k.Class, k.Drivetrain, r.Pollutant))
			}
			seen[r.Pollutant] = true
			if r.PerKm < 0 || !finite(r.PerKm) {
				return bad("externalities", fmt.Sprintf("%s/%s %s must be >= 0", k.Class, k.Drivetrain, r.Pollutant))
			}
		}
	}
	return nil
}

// Year returns the calendar year of a year index.
func (s *Scenario) Year(index int) int { return s.StartYear + index }

// EnergyPrices returns the series matching a vehicle's energy unit.
func (s *Scenario) EnergyPrices(unit model.EnergyUnit) *price.Series {
	if unit == model.UnitKWh {
		return s.Electricity
	}
	return s.Diesel
}

// MaintenanceBand looks up the band for a vehicle class and drivetrain.
func (s *Scenario) MaintenanceBand(class string, d model.Drivetrain) (CostBand, bool) {
	b, ok := s.Maintenance[ClassKey{Class: class, Drivetrain: d}]
	return b, ok
}

// ExternalityRates looks up the pollutant rates for a vehicle class and
// drivetrain.
func (s *Scenario) ExternalityRates(class string, d model.Drivetrain) ([]ExternalityRate, bool) {
	r, ok := s.Externalities[ClassKey{Class: class, Drivetrain: d}]
	return r, ok
}

// Escalate compounds rate over index years.
func Escalate(amount, rate float64, index int) float64 {
	return amount * math.Pow(1+rate, float64(index))
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
