package config

import (
	"fmt"
	"os"

	"vehicle-tco/internal/model"

	"gopkg.in/yaml.v3"
)

// VehicleConfig is the flat on-disk vehicle record. BEV fields and diesel
// fields share one shape; Drivetrain decides which set is used.
type VehicleConfig struct {
	// Optional: load the vehicle from a preset (e.g. examples/vehicles/*.yaml).
	// Non-zero fields set here override the preset.
	VehicleFile string `yaml:"vehicle_file,omitempty" json:"vehicle_file,omitempty"`

	ID               string                `yaml:"id" json:"id"`
	Name             string                `yaml:"name" json:"name"`
	Class            string                `yaml:"class" json:"class"`
	Drivetrain       string                `yaml:"drivetrain" json:"drivetrain"`
	PurchasePrice    float64               `yaml:"purchase_price" json:"purchase_price"`
	LifespanYears    int                   `yaml:"lifespan_years" json:"lifespan_years"`
	RegistrationBase float64               `yaml:"registration_annual" json:"registration_annual"`
	PayloadTonnes    float64               `yaml:"payload_t" json:"payload_t"`
	Residual         []model.ResidualPoint `yaml:"residual" json:"residual"`

	BatteryCapacityKWh float64    `yaml:"battery_capacity_kwh,omitempty" json:"battery_capacity_kwh,omitempty"`
	KWhPerKm           float64    `yaml:"kwh_per_km,omitempty" json:"kwh_per_km,omitempty"`
	CycleLife          float64    `yaml:"cycle_life,omitempty" json:"cycle_life,omitempty"`
	DepthOfDischarge   float64    `yaml:"depth_of_discharge,omitempty" json:"depth_of_discharge,omitempty"`
	ChargingEfficiency float64    `yaml:"charging_efficiency,omitempty" json:"charging_efficiency,omitempty"`
	BatteryCostPerKWh  PriceTable `yaml:"battery_cost_per_kwh,omitempty" json:"battery_cost_per_kwh,omitempty"`

	LitresPer100Km float64 `yaml:"litres_per_100km,omitempty" json:"litres_per_100km,omitempty"`
	CO2KgPerLitre  float64 `yaml:"co2_kg_per_litre,omitempty" json:"co2_kg_per_litre,omitempty"`
}

// ToModel builds and validates the engine vehicle.
func (v VehicleConfig) ToModel() (*model.Vehicle, error) {
	d, err := model.ParseDrivetrain(v.Drivetrain)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", v.label(), err)
	}
	out := model.Vehicle{
		ID:               v.ID,
		Name:             v.Name,
		Class:            v.Class,
		Drivetrain:       d,
		PurchasePrice:    v.PurchasePrice,
		LifespanYears:    v.LifespanYears,
		RegistrationBase: v.RegistrationBase,
		PayloadTonnes:    v.PayloadTonnes,
		Residual:         v.Residual,
	}
	switch d {
	case model.DrivetrainBEV:
		spec := &model.ElectricSpec{
			BatteryCapacityKWh: v.BatteryCapacityKWh,
			KWhPerKm:           v.KWhPerKm,
			CycleLife:          v.CycleLife,
			DepthOfDischarge:   v.DepthOfDischarge,
			ChargingEfficiency: v.ChargingEfficiency,
		}
		// Absent battery cost stays nil; replacement then fails loudly.
		if len(v.BatteryCostPerKWh) > 0 {
			s, err := v.BatteryCostPerKWh.Series()
			if err != nil {
				return nil, fmt.Errorf("vehicle %q battery_cost_per_kwh: %w", v.label(), err)
			}
			spec.BatteryCost = s
		}
		out.Electric = spec
	case model.DrivetrainDiesel:
		out.Diesel = &model.DieselSpec{
			LitresPer100Km: v.LitresPer100Km,
			CO2KgPerLitre:  v.CO2KgPerLitre,
		}
	}
	return model.NewVehicle(out)
}

func (v VehicleConfig) label() string {
	if v.ID != "" {
		return v.ID
	}
	return v.Name
}

type vehicleFileWrapper struct {
	Vehicle VehicleConfig `yaml:"vehicle"`
}

// LoadVehicleFile reads a vehicle preset.
func LoadVehicleFile(path string) (VehicleConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return VehicleConfig{}, err
	}
	var w vehicleFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return VehicleConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return w.Vehicle, nil
}

// MergeVehicle overlays non-zero fields from override onto base.
func MergeVehicle(base, override VehicleConfig) VehicleConfig {
	out := base
	out.VehicleFile = ""
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setNum := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setStr(&out.ID, override.ID)
	setStr(&out.Name, override.Name)
	setStr(&out.Class, override.Class)
	setStr(&out.Drivetrain, override.Drivetrain)
	setNum(&out.PurchasePrice, override.PurchasePrice)
	if override.LifespanYears != 0 {
		out.LifespanYears = override.LifespanYears
	}
	setNum(&out.RegistrationBase, override.RegistrationBase)
	setNum(&out.PayloadTonnes, override.PayloadTonnes)
	if len(override.Residual) > 0 {
		out.Residual = override.Residual
	}
	setNum(&out.BatteryCapacityKWh, override.BatteryCapacityKWh)
	setNum(&out.KWhPerKm, override.KWhPerKm)
	setNum(&out.CycleLife, override.CycleLife)
	setNum(&out.DepthOfDischarge, override.DepthOfDischarge)
	setNum(&out.ChargingEfficiency, override.ChargingEfficiency)
	if len(override.BatteryCostPerKWh) > 0 {
		out.BatteryCostPerKWh = override.BatteryCostPerKWh
	}
	setNum(&out.LitresPer100Km, override.LitresPer100Km)
	setNum(&out.CO2KgPerLitre, override.CO2KgPerLitre)
	return out
}
