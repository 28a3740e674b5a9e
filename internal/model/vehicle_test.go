package model

import (
	"errors"
	"math"
	"testing"

	"vehicle-tco/internal/price"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBEV() Vehicle {
	return Vehicle{
		ID:               "bev-rigid",
		Class:            "Medium Rigid",
		Drivetrain:       DrivetrainBEV,
		PurchasePrice:    400000,
		LifespanYears:    10,
		RegistrationBase: 1500,
		PayloadTonnes:    8,
		Residual: []ResidualPoint{
			{AgeYears: 10, Fraction: 0.1},
			{AgeYears: 5, Fraction: 0.4},
		},
		Electric: &ElectricSpec{
			BatteryCapacityKWh: 400,
			KWhPerKm:           1.2,
			CycleLife:          1500,
			DepthOfDischarge:   0.8,
			ChargingEfficiency: 0.9,
			BatteryCost:        price.Constant(200),
		},
	}
}

func testDiesel() Vehicle {
	return Vehicle{
		ID:               "diesel-rigid",
		Class:            "Medium Rigid",
		Drivetrain:       DrivetrainDiesel,
		PurchasePrice:    200000,
		LifespanYears:    10,
		RegistrationBase: 3000,
		PayloadTonnes:    9,
		Residual:         []ResidualPoint{{AgeYears: 10, Fraction: 0.15}},
		Diesel:           &DieselSpec{LitresPer100Km: 28, CO2KgPerLitre: 2.68},
	}
}

func TestNewVehicle_RejectsImpossibleValues(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(v *Vehicle)
		field string
	}{
		{"negative price", func(v *Vehicle) { v.PurchasePrice = -1 }, "purchase_price"},
		{"zero lifespan", func(v *Vehicle) { v.LifespanYears = 0 }, "lifespan_years"},
		{"zero consumption", func(v *Vehicle) { v.Electric.KWhPerKm = 0 }, "kwh_per_km"},
		{"NaN consumption", func(v *Vehicle) { v.Electric.KWhPerKm = math.NaN() }, "kwh_per_km"},
		{"infinite battery", func(v *Vehicle) { v.Electric.BatteryCapacityKWh = math.Inf(1) }, "battery_capacity_kwh"},
		{"zero cycle life", func(v *Vehicle) { v.Electric.CycleLife = 0 }, "cycle_life"},
		{"NaN depth of discharge", func(v *Vehicle) { v.Electric.DepthOfDischarge = math.NaN() }, "depth_of_discharge"},
		{"NaN efficiency", func(v *Vehicle) { v.Electric.ChargingEfficiency = math.NaN() }, "charging_efficiency"},
		{"NaN registration", func(v *Vehicle) { v.RegistrationBase = math.NaN() }, "registration_base"},
		{"NaN price", func(v *Vehicle) { v.PurchasePrice = math.NaN() }, "purchase_price"},
		{"missing electric spec", func(v *Vehicle) { v.Electric = nil }, "electric"},
		{"residual above one", func(v *Vehicle) { v.Residual[0].Fraction = 1.2 }, "residual"},
		{"residual rising", func(v *Vehicle) { v.Residual[1].Fraction = 0.05 }, "residual"},
		{"residual short of lifespan", func(v *Vehicle) { v.LifespanYears = 12 }, "residual"},
		{"unknown drivetrain", func(v *Vehicle) { v.Drivetrain = "Hydrogen" }, "drivetrain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testBEV()
			spec := *v.Electric
			v.Electric = &spec
			v.Residual = append([]ResidualPoint(nil), v.Residual...)
			tt.edit(&v)

			_, err := NewVehicle(v)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	d := testDiesel()
	d.Diesel = &DieselSpec{LitresPer100Km: 0}
	_, err := NewVehicle(d)
	assert.Error(t, err)
}

func TestNewVehicle_SortsResidualWithoutMutatingInput(t *testing.T) {
	in := testBEV()
	v, err := NewVehicle(in)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.Residual[0].AgeYears)
	assert.Equal(t, 10.0, in.Residual[0].AgeYears)
}

func TestResidualValue_BoundedAndNonIncreasing(t *testing.T) {
	for _, in := range []Vehicle{testBEV(), testDiesel()} {
		v, err := NewVehicle(in)
		require.NoError(t, err)

		prev := v.PurchasePrice
		for age := 0.0; age <= 20; age += 0.25 {
			got := v.ResidualValue(age)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, v.PurchasePrice)
			assert.LessOrEqual(t, got, prev, "age %.2f", age)
			prev = got
		}
	}
}

func TestResidualFraction_InterpolatesFromImplicitAnchor(t *testing.T) {
	v, err := NewVehicle(testBEV())
	require.NoError(t, err)

	assert.Equal(t, 1.0, v.ResidualFraction(0))
	assert.InDelta(t, 0.7, v.ResidualFraction(2.5), 1e-12)
	assert.InDelta(t, 0.4, v.ResidualFraction(5), 1e-12)
	assert.InDelta(t, 0.25, v.ResidualFraction(7.5), 1e-12)
	assert.InDelta(t, 0.1, v.ResidualFraction(15), 1e-12)
	assert.Equal(t, 1.0, v.ResidualFraction(-3))
}

func TestEnergyAndEmissions(t *testing.T) {
	bev, err := NewVehicle(testBEV())
	require.NoError(t, err)
	dsl, err := NewVehicle(testDiesel())
	require.NoError(t, err)

	q, unit := bev.EnergyPerKm()
	assert.Equal(t, 1.2, q)
	assert.Equal(t, UnitKWh, unit)

	q, unit = dsl.EnergyPerKm()
	assert.InDelta(t, 0.28, q, 1e-12)
	assert.Equal(t, UnitLitre, unit)

	assert.InDelta(t, 28000*2.0, dsl.AnnualEnergyCost(100000, 2.0), 1e-6)
	assert.InDelta(t, 120000*0.3, bev.AnnualEnergyCost(100000, 0.3), 1e-6)

	assert.InDelta(t, 28000*2.68, dsl.EmissionsKg(100000, 0.7), 1e-6)
	assert.InDelta(t, 120000*0.7, bev.EmissionsKg(100000, 0.7), 1e-6)
}

func TestRemainingCapacity_Bounds(t *testing.T) {
	spec := *testBEV().Electric
	m := DefaultDegradation

	assert.Equal(t, 1.0, m.RemainingCapacity(spec, 10, 0, 0))

	for _, age := range []float64{0, 1, 5, 10, 40} {
		for _, km := range []float64{0, 1e4, 1e6, 1e9} {
			got := m.RemainingCapacity(spec, 10, age, km)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
	// Fully aged on both axes loses exactly the end-of-life fraction.
	assert.InDelta(t, 0.8, m.RemainingCapacity(spec, 10, 10, 1e9), 1e-12)

	harsh := DegradationModel{CycleWeight: 0.5, CalendarWeight: 0.5, EndOfLifeLoss: 1}
	assert.InDelta(t, 0.0, harsh.RemainingCapacity(spec, 10, 50, 1e9), 1e-12)
}

func TestNewVehicle_RejectsNonFiniteDieselValues(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *DieselSpec)
		field string
	}{
		{"NaN consumption", func(d *DieselSpec) { d.LitresPer100Km = math.NaN() }, "litres_per_100km"},
		{"infinite consumption", func(d *DieselSpec) { d.LitresPer100Km = math.Inf(1) }, "litres_per_100km"},
		{"NaN CO2 factor", func(d *DieselSpec) { d.CO2KgPerLitre = math.NaN() }, "co2_kg_per_litre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testDiesel()
			spec := *v.Diesel
			tt.edit(&spec)
			v.Diesel = &spec

			_, err := NewVehicle(v)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRemainingCapacity_NewBatteryIsFull(t *testing.T) {
	tests := []struct {
		name     string
		edit     func(spec *ElectricSpec)
		lifespan int
	}{
		{"typical spec", func(*ElectricSpec) {}, 10},
		{"zero cycle life", func(spec *ElectricSpec) { spec.CycleLife = 0 }, 10},
		{"zero lifespan", func(*ElectricSpec) {}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := *testBEV().Electric
			tt.edit(&spec)
			assert.Equal(t, 1.0, DefaultDegradation.RemainingCapacity(spec, tt.lifespan, 0, 0))
		})
	}

	// Without a cycle life only calendar ageing applies.
	spec := *testBEV().Electric
	spec.CycleLife = 0
	assert.InDelta(t, 1-0.3*0.5*0.2, DefaultDegradation.RemainingCapacity(spec, 10, 5, 1e9), 1e-12)
}

func TestRemainingCapacity_DegenerateSpecsReportNew(t *testing.T) {
	spec := *testBEV().Electric
	spec.ChargingEfficiency = 0
	assert.Equal(t, 1.0, DefaultDegradation.RemainingCapacity(spec, 10, 8, 5e5))

	spec = *testBEV().Electric
	spec.DepthOfDischarge = 0
	assert.Equal(t, 1.0, DefaultDegradation.RemainingCapacity(spec, 10, 8, 5e5))
	assert.Equal(t, 0.0, spec.EquivalentCycles(5e5))
}

func TestRemainingCapacity_CombinesCycleAndCalendarWear(t *testing.T) {
	spec := *testBEV().Electric
	// 1.2 / 0.9 kWh drawn per km, 320 kWh usable per cycle.
	km := 150000.0
	cycles := km * (1.2 / 0.9) / 320
	assert.InDelta(t, cycles, spec.EquivalentCycles(km), 1e-9)

	want := 1 - (0.7*(cycles/1500)+0.3*(4.0/10))*0.2
	assert.InDelta(t, want, DefaultDegradation.RemainingCapacity(spec, 10, 4, km), 1e-12)
}

func TestDegradationModel_Validate(t *testing.T) {
	assert.NoError(t, DefaultDegradation.Validate())
	assert.True(t, DegradationModel{}.IsZero())
	assert.Error(t, DegradationModel{CycleWeight: 0.9, CalendarWeight: 0.3, EndOfLifeLoss: 0.2}.Validate())
	assert.Error(t, DegradationModel{CycleWeight: -0.1, CalendarWeight: 1.1, EndOfLifeLoss: 0.2}.Validate())
	assert.Error(t, DegradationModel{CycleWeight: 0.7, CalendarWeight: 0.3, EndOfLifeLoss: 1.5}.Validate())
}

func TestParseDrivetrain(t *testing.T) {
	d, err := ParseDrivetrain("electric")
	require.NoError(t, err)
	assert.Equal(t, DrivetrainBEV, d)
	assert.Equal(t, UnitLitre, DrivetrainDiesel.EnergyUnit())

	_, err = ParseDrivetrain("steam")
	assert.Error(t, err)
}
