package scenario

import (
	"errors"
	"testing"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/price"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() Params {
	return Params{
		Name:             "base",
		StartYear:        2025,
		Horizon:          10,
		DiscountRate:     0.07,
		AnnualDistanceKm: 80000,
		Financing:        Financing{Method: FinancingCash},
		Maintenance: map[ClassKey]CostBand{
			{Class: "Medium Rigid", Drivetrain: model.DrivetrainBEV}: {Min: 4000, Max: 6000},
		},
		Insurance: map[model.Drivetrain]InsuranceRule{
			model.DrivetrainBEV: {Method: InsuranceFixed, Amount: 5000},
		},
		CarbonTax: Charge{Enabled: true, Base: 30, Escalation: 0.1},
	}
}

func priceTables() price.Tables {
	return price.Tables{
		"central": {2025: price.Exact(0.25), 2035: price.Exact(0.20)},
		"high":    {2025: {Min: 0.30, Max: 0.40}},
	}
}

func TestBuild_ResolvesSelectedScenarios(t *testing.T) {
	s, err := Build(baseParams(),
		PriceSelection{Tables: priceTables(), Scenario: "central"},
		PriceSelection{Tables: price.Tables{"central": {2025: price.Exact(2.0)}}, Scenario: "central"},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.225, s.Electricity.ValueAt(2030), 1e-12)
	assert.Equal(t, 2.0, s.Diesel.ValueAt(2040))
	assert.Equal(t, model.DefaultDegradation, s.Degradation)
	assert.Equal(t, 1, s.Infrastructure.FleetSize)

	tax := s.CarbonTax.Series()
	require.NotNil(t, tax)
	assert.InDelta(t, 33.0, tax.ValueAt(2026), 1e-9)
	assert.Equal(t, 2034, tax.Anchors()[len(tax.Anchors())-1].Year)
}

func TestBuild_Blend(t *testing.T) {
	s, err := Build(baseParams(),
		PriceSelection{Tables: priceTables(), Scenario: "central", BlendWith: "high"},
		PriceSelection{Tables: priceTables(), Scenario: "central"},
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, s.Electricity.ValueAt(2025), 1e-12)
}

func TestBuild_ChargingMix(t *testing.T) {
	tables := price.Tables{
		"depot":  {2025: price.Exact(0.20)},
		"public": {2025: price.Exact(0.60)},
	}
	diesel := PriceSelection{Tables: priceTables(), Scenario: "central"}

	tests := []struct {
		name    string
		sel     PriceSelection
		want    float64
		wantErr string
	}{
		{
			name: "fractions",
			sel:  PriceSelection{Tables: tables, ChargingMix: map[string]float64{"depot": 0.75, "public": 0.25}},
			want: 0.30,
		},
		{
			name: "percentages",
			sel:  PriceSelection{Tables: tables, ChargingMix: map[string]float64{"depot": 75, "public": 25}},
			want: 0.30,
		},
		{
			name:    "combined with scenario",
			sel:     PriceSelection{Tables: tables, Scenario: "depot", ChargingMix: map[string]float64{"depot": 1}},
			wantErr: "charging_mix",
		},
		{
			name:    "unknown option",
			sel:     PriceSelection{Tables: tables, ChargingMix: map[string]float64{"rooftop": 1}},
			wantErr: "unknown price scenario",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(baseParams(), tt.sel, diesel)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, price.ModeWeighted, s.Electricity.Mode())
			assert.InDelta(t, tt.want, s.Electricity.ValueAt(2030), 1e-12)
		})
	}
}

func TestBuild_UnknownPriceScenarioFails(t *testing.T) {
	_, err := Build(baseParams(),
		PriceSelection{Tables: priceTables(), Scenario: "optimistic"},
		PriceSelection{Tables: priceTables(), Scenario: "central"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPriceScenario)
	assert.Contains(t, err.Error(), "electricity")
}

func TestValidate_ConfigErrors(t *testing.T) {
	ten := 10
	tests := []struct {
		name  string
		edit  func(p *Params)
		field string
	}{
		{"zero horizon", func(p *Params) { p.Horizon = 0 }, "horizon"},
		{"negative discount", func(p *Params) { p.DiscountRate = -0.01 }, "discount_rate"},
		{"forced index at horizon", func(p *Params) { p.Battery.ForcedYearIndex = &ten }, "battery_replacement.forced_year_index"},
		{"bad threshold", func(p *Params) { p.Battery.Threshold = 1.5 }, "battery_replacement.threshold"},
		{"unknown financing", func(p *Params) { p.Financing.Method = "lease" }, "financing.method"},
		{"loan without term", func(p *Params) { p.Financing = Financing{Method: FinancingLoan} }, "financing.loan_term_years"},
		{"inverted maintenance band", func(p *Params) {
			p.Maintenance[ClassKey{Class: "x", Drivetrain: model.DrivetrainDiesel}] = CostBand{Min: 5, Max: 1}
		}, "maintenance"},
		{"bad degradation", func(p *Params) { p.Degradation = model.DegradationModel{CycleWeight: 1, CalendarWeight: 1} }, "degradation"},
		{"subsidy above one", func(p *Params) { p.Incentives.ChargerSubsidy = 2 }, "incentives.charger_subsidy"},
		{"negative externality", func(p *Params) {
			p.Externalities = map[ClassKey][]ExternalityRate{
				{Class: "Medium Rigid", Drivetrain: model.DrivetrainBEV}: {{Pollutant: "nox", PerKm: -0.1}},
			}
		}, "externalities"},
		{"duplicate pollutant", func(p *Params) {
			p.Externalities = map[ClassKey][]ExternalityRate{
				{Class: "Medium Rigid", Drivetrain: model.DrivetrainBEV}: {{Pollutant: "nox", PerKm: 0.1}, {Pollutant: "nox", PerKm: 0.2}},
			}
		}, "externalities"},
		{"unnamed pollutant", func(p *Params) {
			p.Externalities = map[ClassKey][]ExternalityRate{
				{Class: "Medium Rigid", Drivetrain: model.DrivetrainBEV}: {{PerKm: 0.1}},
			}
		}, "externalities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.edit(&p)
			_, err := New(p, price.Constant(0.3), price.Constant(2))
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNew_RequiresPriceSeries(t *testing.T) {
	_, err := New(baseParams(), nil, price.Constant(2))
	assert.Error(t, err)
}

func TestDerive_LeavesBaseUntouched(t *testing.T) {
	idx := 3
	p := baseParams()
	p.Battery = BatteryPolicy{Enabled: true, Threshold: 0.7, ForcedYearIndex: &idx}
	key := ClassKey{Class: "Medium Rigid", Drivetrain: model.DrivetrainBEV}
	p.Externalities = map[ClassKey][]ExternalityRate{key: {{Pollutant: "pm25", PerKm: 0.01}}}
	base, err := New(p, price.Constant(0.3), price.Constant(2))
	require.NoError(t, err)

	derived, err := base.Derive(func(s *Scenario) {
		s.Horizon = 12
		s.Diesel = s.Diesel.Scale(1.3)
		*s.Battery.ForcedYearIndex = 5
		s.Maintenance[ClassKey{Class: "Heavy Rigid", Drivetrain: model.DrivetrainBEV}] = CostBand{Min: 1, Max: 2}
		s.Externalities[key][0].PerKm = 0.5
	})
	require.NoError(t, err)

	assert.Equal(t, 10, base.Horizon)
	assert.Equal(t, 2.0, base.Diesel.ValueAt(2025))
	assert.Equal(t, 3, *base.Battery.ForcedYearIndex)
	assert.Len(t, base.Maintenance, 1)
	rates, ok := base.ExternalityRates("Medium Rigid", model.DrivetrainBEV)
	require.True(t, ok)
	assert.Equal(t, 0.01, rates[0].PerKm)

	assert.Equal(t, 12, derived.Horizon)
	assert.InDelta(t, 2.6, derived.Diesel.ValueAt(2025), 1e-12)
	assert.Len(t, derived.Maintenance, 2)
	// Charge schedules follow the new horizon.
	last := derived.CarbonTax.Series().Anchors()
	assert.Equal(t, 2036, last[len(last)-1].Year)
}

func TestDerive_Revalidates(t *testing.T) {
	base, err := New(baseParams(), price.Constant(0.3), price.Constant(2))
	require.NoError(t, err)
	_, err = base.Derive(func(s *Scenario) { s.Horizon = 0 })
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	s, err := New(baseParams(), price.Constant(0.3), price.Constant(2))
	require.NoError(t, err)

	band, ok := s.MaintenanceBand("Medium Rigid", model.DrivetrainBEV)
	require.True(t, ok)
	assert.Equal(t, 5000.0, band.Mid())
	_, ok = s.MaintenanceBand("Medium Rigid", model.DrivetrainDiesel)
	assert.False(t, ok)

	assert.Same(t, s.Electricity, s.EnergyPrices(model.UnitKWh))
	assert.Same(t, s.Diesel, s.EnergyPrices(model.UnitLitre))
	assert.Equal(t, 2027, s.Year(2))
	assert.InDelta(t, 121.0, Escalate(100, 0.1, 2), 1e-9)
}
