package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/price"
	"vehicle-tco/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const presetYAML = `
vehicle:
  id: preset-bev
  class: Rigid
  drivetrain: BEV
  purchase_price: 300000
  lifespan_years: 10
  registration_annual: 1500
  payload_t: 8
  residual:
    - {age_years: 10, fraction: 0.2}
  battery_capacity_kwh: 300
  kwh_per_km: 0.9
  cycle_life: 2500
  depth_of_discharge: 0.9
  charging_efficiency: 0.9
  battery_cost_per_kwh:
    2025: 180
    2030: [100, 140]
`

const configYAML = `
vehicle_a:
  vehicle_file: bev.yaml
  purchase_price: 280000
vehicle_b:
  id: diesel
  class: Rigid
  drivetrain: diesel
  purchase_price: 180000
  lifespan_years: 10
  registration_annual: 3000
  payload_t: 9
  residual:
    - {age_years: 10, fraction: 0.15}
  litres_per_100km: 28
  co2_kg_per_litre: 2.68
scenario:
  start_year: 2025
  horizon_years: 8
  discount_rate: 0.06
  annual_distance_km: 60000
  financing: {method: cash}
  maintenance:
    - {class: Rigid, drivetrain: BEV, min: 3000, max: 5000}
    - {class: Rigid, drivetrain: Diesel, min: 6000, max: 8000}
  insurance:
    BEV: {method: fixed, amount: 6000}
    Diesel: {method: residual_percent, percent: 0.03}
  battery_replacement: {enabled: true, threshold: 0.75, forced_year_index: 5}
  degradation: {cycle_weight: 0.6, calendar_weight: 0.4, end_of_life_loss: 0.25}
  carbon_tax:
    enabled: true
    schedule: {2025: 30, 2030: 60}
  road_user_charge: {enabled: true, base: 0.03, escalation: 0.02}
prices:
  electricity:
    scenario: central
    blend_with: high
    tables:
      central: {2025: 0.25, 2030: 0.20}
      high: {2025: [0.30, 0.40]}
  diesel:
    scenario: central
    tables:
      central: {2025: 1.9, 2035: 2.3}
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bev.yaml"), []byte(presetYAML), 0o644))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))
	return path
}

func TestLoad_MergesPresetAndBuilds(t *testing.T) {
	c, err := Load(writeFixtures(t))
	require.NoError(t, err)

	assert.Equal(t, "preset-bev", c.VehicleA.ID)
	assert.Equal(t, 280000.0, c.VehicleA.PurchasePrice, "inline field overrides preset")
	assert.Equal(t, 300.0, c.VehicleA.BatteryCapacityKWh)
	assert.Empty(t, c.VehicleA.VehicleFile)

	in, err := c.Build()
	require.NoError(t, err)

	assert.Equal(t, model.DrivetrainBEV, in.A.Drivetrain)
	assert.Equal(t, model.DrivetrainDiesel, in.B.Drivetrain)
	require.NotNil(t, in.A.Electric.BatteryCost)
	assert.InDelta(t, 120.0, in.A.Electric.BatteryCost.ValueAt(2030), 1e-12)

	s := in.Scenario
	assert.Equal(t, 8, s.Horizon)
	assert.Equal(t, scenario.FinancingCash, s.Financing.Method)
	assert.Equal(t, 5, *s.Battery.ForcedYearIndex)
	assert.Equal(t, 0.25, s.Degradation.EndOfLifeLoss)
	// Blend of central (0.25) and high (0.35) at 2025.
	assert.InDelta(t, 0.30, s.Electricity.ValueAt(2025), 1e-12)
	assert.InDelta(t, 42.0, s.CarbonTax.Series().ValueAt(2027), 1e-9)
	assert.InDelta(t, 0.0306, s.RoadUserCharge.Series().ValueAt(2026), 1e-12)

	rule := s.Insurance[model.DrivetrainDiesel]
	assert.Equal(t, scenario.InsuranceResidualPercent, rule.Method)
	band, ok := s.MaintenanceBand("Rigid", model.DrivetrainDiesel)
	require.True(t, ok)
	assert.Equal(t, 7000.0, band.Mid())
}

func TestLoad_UnknownPriceScenario(t *testing.T) {
	path := writeFixtures(t)
	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	c.Prices.Diesel.Scenario = "low"

	err = c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, scenario.ErrUnknownPriceScenario)
}

func TestLoad_MissingPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicle_a:\n  vehicle_file: nope.yaml\n"), 0o644))
	_, err := LoadUnchecked(path)
	assert.Error(t, err)
}

func TestBuild_InvalidVehicleNamesSide(t *testing.T) {
	c, err := LoadUnchecked(writeFixtures(t))
	require.NoError(t, err)
	c.VehicleB.PurchasePrice = -5

	_, err = c.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle_b")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestToParams_UnknownDrivetrain(t *testing.T) {
	sc := ScenarioConfig{Maintenance: []MaintenanceConfig{{Class: "Rigid", Drivetrain: "hydrogen"}}}
	_, err := sc.ToParams()
	var cerr *scenario.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "maintenance", cerr.Field)
}

func TestPriceCell_YAMLAndJSON(t *testing.T) {
	var table PriceTable
	require.NoError(t, yaml.Unmarshal([]byte("2025: 1.5\n2030: [1.0, 2.0]\n"), &table))
	assert.Equal(t, PriceCell{Min: 1.5, Max: 1.5}, table[2025])
	assert.Equal(t, PriceCell{Min: 1.0, Max: 2.0}, table[2030])

	require.Error(t, yaml.Unmarshal([]byte("2025: [1, 2, 3]\n"), &table))
	require.Error(t, yaml.Unmarshal([]byte("2025: {a: 1}\n"), &table))

	var fromJSON PriceTable
	require.NoError(t, json.Unmarshal([]byte(`{"2025": 0.3, "2030": [0.2, 0.4]}`), &fromJSON))
	assert.Equal(t, PriceCell{Min: 0.2, Max: 0.4}, fromJSON[2030])

	raw, err := json.Marshal(fromJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025": 0.3, "2030": [0.2, 0.4]}`, string(raw))

	out, err := yaml.Marshal(PriceTable{2025: {Min: 1, Max: 2}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "2025:")
}

func TestMergeVehicle_OverlaysNonZero(t *testing.T) {
	base := VehicleConfig{ID: "a", PurchasePrice: 100, LifespanYears: 10, KWhPerKm: 1}
	got := MergeVehicle(base, VehicleConfig{VehicleFile: "x.yaml", PurchasePrice: 90, Residual: []model.ResidualPoint{{AgeYears: 10, Fraction: 0.1}}})
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 90.0, got.PurchasePrice)
	assert.Equal(t, 10, got.LifespanYears)
	assert.Equal(t, 1.0, got.KWhPerKm)
	assert.Len(t, got.Residual, 1)
	assert.Empty(t, got.VehicleFile)
}

func TestLoad_ShippedExamples(t *testing.T) {
	tests := []struct {
		file     string
		elec2025 float64
		wantMode price.Mode
	}{
		{"config.yaml", 0.28, price.ModeAveragedRange},
		{"config_charging_mix.yaml", 0.7*0.18 + 0.3*0.65, price.ModeWeighted},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			c, err := Load(filepath.Join("..", "..", "examples", tt.file))
			require.NoError(t, err)
			in, err := c.Build()
			require.NoError(t, err)
			assert.Equal(t, "bev-articulated", in.A.ID)
			assert.Equal(t, "diesel-articulated", in.B.ID)
			assert.Equal(t, 4, in.Scenario.Infrastructure.FleetSize)
			assert.Equal(t, tt.wantMode, in.Scenario.Electricity.Mode())
			assert.InDelta(t, tt.elec2025, in.Scenario.Electricity.ValueAt(2025), 1e-12)

			rates, ok := in.Scenario.ExternalityRates("Articulated", model.DrivetrainDiesel)
			require.True(t, ok)
			assert.Len(t, rates, 3)
		})
	}
}

func TestToParams_Externalities(t *testing.T) {
	sc := ScenarioConfig{Externalities: []ExternalityConfig{
		{Class: "Rigid", Drivetrain: "diesel", CostPerKm: map[string]float64{"pm25": 0.03, "nox": 0.05}},
	}}
	p, err := sc.ToParams()
	require.NoError(t, err)
	rates := p.Externalities[scenario.ClassKey{Class: "Rigid", Drivetrain: model.DrivetrainDiesel}]
	assert.Equal(t, []scenario.ExternalityRate{{Pollutant: "nox", PerKm: 0.05}, {Pollutant: "pm25", PerKm: 0.03}}, rates)

	tests := []struct {
		name string
		ext  []ExternalityConfig
	}{
		{"unknown drivetrain", []ExternalityConfig{{Class: "Rigid", Drivetrain: "steam"}}},
		{"listed twice", []ExternalityConfig{
			{Class: "Rigid", Drivetrain: "BEV", CostPerKm: map[string]float64{"pm25": 0.01}},
			{Class: "Rigid", Drivetrain: "electric", CostPerKm: map[string]float64{"pm25": 0.02}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScenarioConfig{Externalities: tt.ext}.ToParams()
			var cerr *scenario.ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, "externalities", cerr.Field)
		})
	}
}

func TestBuild_ChargingMixIsElectricityOnly(t *testing.T) {
	c, err := LoadUnchecked(writeFixtures(t))
	require.NoError(t, err)
	c.Prices.Diesel.ChargingMix = map[string]float64{"central": 1}
	c.Prices.Diesel.Scenario = ""

	_, err = c.Build()
	var cerr *scenario.ConfigError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, "prices.diesel.charging_mix", cerr.Field)
}

func TestBuild_ChargingMixFromYAML(t *testing.T) {
	c, err := LoadUnchecked(writeFixtures(t))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(`
charging_mix: {central: 60, high: 40}
tables:
  central: {2025: 0.25}
  high: {2025: 0.40}
`), &c.Prices.Electricity))
	c.Prices.Electricity.Scenario = ""
	c.Prices.Electricity.BlendWith = ""

	in, err := c.Build()
	require.NoError(t, err)
	assert.InDelta(t, 0.31, in.Scenario.Electricity.ValueAt(2025), 1e-12)
}
