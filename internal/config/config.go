package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). The HTTP API accepts the
// same shape as JSON.
type Config struct {
	VehicleA VehicleConfig  `yaml:"vehicle_a" json:"vehicle_a"`
	VehicleB VehicleConfig  `yaml:"vehicle_b" json:"vehicle_b"`
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
	Prices   PricesConfig   `yaml:"prices" json:"prices"`
}

// ScenarioConfig is the file form of scenario.Params.
type ScenarioConfig struct {
	Name             string  `yaml:"name" json:"name"`
	StartYear        int     `yaml:"start_year" json:"start_year"`
	HorizonYears     int     `yaml:"horizon_years" json:"horizon_years"`
	DiscountRate     float64 `yaml:"discount_rate" json:"discount_rate"`
	AnnualDistanceKm float64 `yaml:"annual_distance_km" json:"annual_distance_km"`

	Financing      FinancingConfig            `yaml:"financing" json:"financing"`
	Infrastructure InfrastructureConfig       `yaml:"infrastructure" json:"infrastructure"`
	Maintenance    []MaintenanceConfig        `yaml:"maintenance" json:"maintenance"`
	Insurance      map[string]InsuranceConfig `yaml:"insurance" json:"insurance"`
	Escalation     EscalationConfig           `yaml:"escalation" json:"escalation"`

	BatteryReplacement BatteryReplacementConfig `yaml:"battery_replacement" json:"battery_replacement"`
	Degradation        *DegradationConfig       `yaml:"degradation,omitempty" json:"degradation,omitempty"`

	CarbonTax      ChargeConfig `yaml:"carbon_tax" json:"carbon_tax"`
	RoadUserCharge ChargeConfig `yaml:"road_user_charge" json:"road_user_charge"`

	GridEmissionFactor float64             `yaml:"grid_emission_factor" json:"grid_emission_factor"`
	Incentives         IncentivesConfig    `yaml:"incentives" json:"incentives"`
	Externalities      []ExternalityConfig `yaml:"externalities,omitempty" json:"externalities,omitempty"`
	PayloadAdjusted    bool                `yaml:"payload_adjusted" json:"payload_adjusted"`
}

type FinancingConfig struct {
	Method        string  `yaml:"method" json:"method"`
	DownPayment   float64 `yaml:"down_payment" json:"down_payment"`
	LoanTermYears int     `yaml:"loan_term_years" json:"loan_term_years"`
	LoanRate      float64 `yaml:"loan_rate" json:"loan_rate"`
}

type InfrastructureConfig struct {
	ChargerHardware  float64 `yaml:"charger_hardware" json:"charger_hardware"`
	Installation     float64 `yaml:"installation" json:"installation"`
	MaintenanceRate  float64 `yaml:"maintenance_rate" json:"maintenance_rate"`
	ServiceLifeYears int     `yaml:"service_life_years" json:"service_life_years"`
	FleetSize        int     `yaml:"fleet_size" json:"fleet_size"`
}

type MaintenanceConfig struct {
	Class      string  `yaml:"class" json:"class"`
	Drivetrain string  `yaml:"drivetrain" json:"drivetrain"`
	Min        float64 `yaml:"min" json:"min"`
	Max        float64 `yaml:"max" json:"max"`
}

type InsuranceConfig struct {
	Method  string  `yaml:"method" json:"method"`
	Amount  float64 `yaml:"amount" json:"amount"`
	Percent float64 `yaml:"percent" json:"percent"`
}

type EscalationConfig struct {
	Maintenance  float64 `yaml:"maintenance" json:"maintenance"`
	Insurance    float64 `yaml:"insurance" json:"insurance"`
	Registration float64 `yaml:"registration" json:"registration"`
}

type BatteryReplacementConfig struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	Threshold       float64 `yaml:"threshold" json:"threshold"`
	ForcedYearIndex *int    `yaml:"forced_year_index,omitempty" json:"forced_year_index,omitempty"`
}

type DegradationConfig struct {
	CycleWeight    float64 `yaml:"cycle_weight" json:"cycle_weight"`
	CalendarWeight float64 `yaml:"calendar_weight" json:"calendar_weight"`
	EndOfLifeLoss  float64 `yaml:"end_of_life_loss" json:"end_of_life_loss"`
}

// ChargeConfig is either an escalating base rate or an explicit schedule.
type ChargeConfig struct {
	Enabled    bool       `yaml:"enabled" json:"enabled"`
	Base       float64    `yaml:"base" json:"base"`
	Escalation float64    `yaml:"escalation" json:"escalation"`
	Schedule   PriceTable `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}

type IncentivesConfig struct {
	PurchaseRebate        float64 `yaml:"purchase_rebate" json:"purchase_rebate"`
	RegistrationExemption float64 `yaml:"registration_exemption" json:"registration_exemption"`
	ChargerSubsidy        float64 `yaml:"charger_subsidy" json:"charger_subsidy"`
}

// ExternalityConfig prices pollutants in AUD/km for one vehicle class and
// drivetrain. A "total" entry replaces the sum of the others.
type ExternalityConfig struct {
	Class      string             `yaml:"class" json:"class"`
	Drivetrain string             `yaml:"drivetrain" json:"drivetrain"`
	CostPerKm  map[string]float64 `yaml:"cost_per_km" json:"cost_per_km"`
}

// Inputs are the engine values a Config resolves to.
type Inputs struct {
	A        *model.Vehicle
	B        *model.Vehicle
	Scenario *scenario.Scenario
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.ResolveVehicleFiles(func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		// Prefer paths relative to the config file, fall back to cwd.
		cand := filepath.Join(filepath.Dir(path), name)
		if _, err := os.Stat(cand); err == nil {
			return cand
		}
		return name
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// ResolveVehicleFiles loads any vehicle_file presets, mapping each name to a
// path with resolve, and merges the inline fields over them.
func (c *Config) ResolveVehicleFiles(resolve func(string) string) error {
	for _, v := range []*VehicleConfig{&c.VehicleA, &c.VehicleB} {
		if v.VehicleFile == "" {
			continue
		}
		loaded, err := LoadVehicleFile(resolve(v.VehicleFile))
		if err != nil {
			return err
		}
		*v = MergeVehicle(loaded, *v)
	}
	return nil
}

// Validate checks the config by building engine values from it.
func (c *Config) Validate() error {
	_, err := c.Build()
	return err
}

// Build converts the config into validated engine inputs.
func (c *Config) Build() (*Inputs, error) {
	if c == nil {
		return nil, errors.New("config is nil")
	}
	a, err := c.VehicleA.ToModel()
	if err != nil {
		return nil, fmt.Errorf("vehicle_a: %w", err)
	}
	b, err := c.VehicleB.ToModel()
	if err != nil {
		return nil, fmt.Errorf("vehicle_b: %w", err)
	}
	params, err := c.Scenario.ToParams()
	if err != nil {
		return nil, err
	}
	if len(c.Prices.Diesel.ChargingMix) > 0 {
		return nil, &scenario.ConfigError{Field: "prices.diesel.charging_mix", Reason: "applies to electricity only"}
	}
	s, err := scenario.Build(params, c.Prices.Electricity.toModel(), c.Prices.Diesel.toModel())
	if err != nil {
		return nil, err
	}
	return &Inputs{A: a, B: b, Scenario: s}, nil
}

// ToParams converts the scenario section. Unknown drivetrain names are
// configuration errors.
func (sc ScenarioConfig) ToParams() (scenario.Params, error) {
	p := scenario.Params{
		Name:             sc.Name,
		StartYear:        sc.StartYear,
		Horizon:          sc.HorizonYears,
		DiscountRate:     sc.DiscountRate,
		AnnualDistanceKm: sc.AnnualDistanceKm,
		Financing: scenario.Financing{
			Method:              scenario.FinancingMethod(sc.Financing.Method),
			DownPaymentFraction: sc.Financing.DownPayment,
			LoanTermYears:       sc.Financing.LoanTermYears,
			LoanRate:            sc.Financing.LoanRate,
		},
		Infrastructure: scenario.Infrastructure{
			ChargerHardware:  sc.Infrastructure.ChargerHardware,
			Installation:     sc.Infrastructure.Installation,
			MaintenanceRate:  sc.Infrastructure.MaintenanceRate,
			ServiceLifeYears: sc.Infrastructure.ServiceLifeYears,
			FleetSize:        sc.Infrastructure.FleetSize,
		},
		Maintenance: map[scenario.ClassKey]scenario.CostBand{},
		Insurance:   map[model.Drivetrain]scenario.InsuranceRule{},
		Escalation: scenario.Escalation{
			Maintenance:  sc.Escalation.Maintenance,
			Insurance:    sc.Escalation.Insurance,
			Registration: sc.Escalation.Registration,
		},
		Battery: scenario.BatteryPolicy{
			Enabled:         sc.BatteryReplacement.Enabled,
			Threshold:       sc.BatteryReplacement.Threshold,
			ForcedYearIndex: sc.BatteryReplacement.ForcedYearIndex,
		},
		GridEmissionFactor: sc.GridEmissionFactor,
		Incentives: scenario.Incentives{
			PurchaseRebate:        sc.Incentives.PurchaseRebate,
			RegistrationExemption: sc.Incentives.RegistrationExemption,
			ChargerSubsidy:        sc.Incentives.ChargerSubsidy,
		},
		PayloadAdjusted: sc.PayloadAdjusted,
	}
	if sc.Degradation != nil {
		p.Degradation = model.DegradationModel{
			CycleWeight:    sc.Degradation.CycleWeight,
			CalendarWeight: sc.Degradation.CalendarWeight,
			EndOfLifeLoss:  sc.Degradation.EndOfLifeLoss,
		}
	}

	for _, m := range sc.Maintenance {
		d, err := model.ParseDrivetrain(m.Drivetrain)
		if err != nil {
			return p, &scenario.ConfigError{Field: "maintenance", Reason: err.Error()}
		}
		p.Maintenance[scenario.ClassKey{Class: m.Class, Drivetrain: d}] = scenario.CostBand{Min: m.Min, Max: m.Max}
	}
	for name, in := range sc.Insurance {
		d, err := model.ParseDrivetrain(name)
		if err != nil {
			return p, &scenario.ConfigError{Field: "insurance", Reason: err.Error()}
		}
		p.Insurance[d] = scenario.InsuranceRule{
			Method:  scenario.InsuranceMethod(in.Method),
			Amount:  in.Amount,
			Percent: in.Percent,
		}
	}

	if len(sc.Externalities) > 0 {
		p.Externalities = make(map[scenario.ClassKey][]scenario.ExternalityRate, len(sc.Externalities))
	}
	for _, e := range sc.Externalities {
		d, err := model.ParseDrivetrain(e.Drivetrain)
		if err != nil {
			return p, &scenario.ConfigError{Field: "externalities", Reason: err.Error()}
		}
		key := scenario.ClassKey{Class: e.Class, Drivetrain: d}
		if _, dup := p.Externalities[key]; dup {
			return p, &scenario.ConfigError{Field: "externalities", Reason: fmt.Sprintf("%s/%s is listed twice", e.Class, d)}
		}
		pollutants := make([]string, 0, len(e.CostPerKm))
		for name := range e.CostPerKm {
			pollutants = append(pollutants, name)
		}
		sort.Strings(pollutants)
		rates := make([]scenario.ExternalityRate, 0, len(pollutants))
		for _, name := range pollutants {
			rates = append(rates, scenario.ExternalityRate{Pollutant: name, PerKm: e.CostPerKm[name]})
		}
		p.Externalities[key] = rates
	}

	var err error
	if p.CarbonTax, err = sc.CarbonTax.toCharge("carbon_tax"); err != nil {
		return p, err
	}
	if p.RoadUserCharge, err = sc.RoadUserCharge.toCharge("road_user_charge"); err != nil {
		return p, err
	}
	return p, nil
}

func (cc ChargeConfig) toCharge(field string) (scenario.Charge, error) {
	out := scenario.Charge{Enabled: cc.Enabled, Base: cc.Base, Escalation: cc.Escalation}
	if len(cc.Schedule) > 0 {
		s, err := cc.Schedule.Series()
		if err != nil {
			return out, &scenario.ConfigError{Field: field + ".schedule", Reason: err.Error()}
		}
		out.Authored = s
	}
	return out, nil
}
