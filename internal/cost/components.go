package cost

import (
	"errors"
	"fmt"
	"math"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
)

// NetPurchasePrice is the purchase price after BEV purchase rebates.
func NetPurchasePrice(v *model.Vehicle, s *scenario.Scenario) float64 {
	p := v.PurchasePrice
	if v.Drivetrain == model.DrivetrainBEV {
		p -= s.Incentives.PurchaseRebate
	}
	return math.Max(0, p)
}

// LoanPayment is the level annual payment that repays principal over years
// at rate. A zero rate is straight-line.
func LoanPayment(principal, rate float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	if rate == 0 {
		return principal / float64(years)
	}
	f := math.Pow(1+rate, float64(years))
	return principal * rate * f / (f - 1)
}

func acquisitionCost(in Input, _ *RunState) (float64, error) {
	s := in.Scenario
	price := NetPurchasePrice(in.Vehicle, s)
	f := s.Financing

	if f.Method != scenario.FinancingLoan {
		if in.YearIndex == 0 {
			return price, nil
		}
		return 0, nil
	}

	down := price * f.DownPaymentFraction
	if in.YearIndex == 0 {
		return down, nil
	}
	if in.YearIndex > f.LoanTermYears {
		return 0, nil
	}
	return LoanPayment(price-down, f.LoanRate, f.LoanTermYears), nil
}

func energyCost(in Input, _ *RunState) (float64, error) {
	_, unit := in.Vehicle.EnergyPerKm()
	name := "diesel price"
	if unit == model.UnitKWh {
		name = "electricity price"
	}
	p, err := in.Scenario.EnergyPrices(unit).Lookup(name, in.Year)
	if err != nil {
		return 0, &MissingDataError{Kind: KindEnergy, Vehicle: in.Vehicle.Label(), Err: err}
	}
	return in.Vehicle.AnnualEnergyCost(in.DistanceKm, p), nil
}

func checkMaintenance(v *model.Vehicle, s *scenario.Scenario) error {
	if _, ok := s.MaintenanceBand(v.Class, v.Drivetrain); !ok {
		return fmt.Errorf("no maintenance band for class %q drivetrain %s", v.Class, v.Drivetrain)
	}
	return nil
}

func maintenanceCost(in Input, _ *RunState) (float64, error) {
	band, ok := in.Scenario.MaintenanceBand(in.Vehicle.Class, in.Vehicle.Drivetrain)
	if !ok {
		return 0, &MissingDataError{Kind: KindMaintenance, Vehicle: in.Vehicle.Label(), Err: checkMaintenance(in.Vehicle, in.Scenario)}
	}
	return scenario.Escalate(band.Mid(), in.Scenario.Escalation.Maintenance, in.YearIndex), nil
}

func infrastructureCost(in Input, st *RunState) (float64, error) {
	infra := in.Scenario.Infrastructure
	total := infra.ChargerHardware * infra.MaintenanceRate

	renew := infra.ServiceLifeYears > 0 && in.YearIndex > 0 && in.YearIndex%infra.ServiceLifeYears == 0
	if (in.YearIndex == 0 && st.InfrastructureInstalls == 0) || renew {
		capital := (infra.ChargerHardware + infra.Installation) * (1 - in.Scenario.Incentives.ChargerSubsidy)
		total += capital
		st.InfrastructureInstalls++
	}
	return total / float64(infra.FleetSize), nil
}

func checkBatteryCost(v *model.Vehicle, _ *scenario.Scenario) error {
	if v.Electric == nil || v.Electric.BatteryCost == nil {
		return errors.New("battery replacement is enabled but the vehicle has no battery cost projection")
	}
	return nil
}

// batteryReplacementCost fires once, in the first year where the forced index
// is reached or remaining capacity is at or below the policy threshold.
func batteryReplacementCost(in Input, st *RunState) (float64, error) {
	if st.BatteryReplaced {
		return 0, nil
	}
	v, s := in.Vehicle, in.Scenario
	policy := s.Battery

	due := policy.ForcedYearIndex != nil && in.YearIndex >= *policy.ForcedYearIndex
	if !due {
		remaining := s.Degradation.RemainingCapacity(*v.Electric, v.LifespanYears, float64(in.YearIndex), in.CumulativeKm)
		due = remaining <= policy.Threshold
	}
	if !due {
		return 0, nil
	}

	perKWh, err := v.Electric.BatteryCost.Lookup("battery cost", in.Year)
	if err != nil {
		return 0, &MissingDataError{Kind: KindBatteryReplacement, Vehicle: v.Label(), Err: err}
	}
	st.BatteryReplaced = true
	st.ReplacementYearIndex = in.YearIndex
	return v.Electric.BatteryCapacityKWh * perKWh, nil
}

func checkInsurance(v *model.Vehicle, s *scenario.Scenario) error {
	if _, ok := s.Insurance[v.Drivetrain]; !ok {
		return fmt.Errorf("no insurance rule for drivetrain %s", v.Drivetrain)
	}
	return nil
}

func insuranceCost(in Input, _ *RunState) (float64, error) {
	rule, ok := in.Scenario.Insurance[in.Vehicle.Drivetrain]
	if !ok {
		return 0, &MissingDataError{Kind: KindInsurance, Vehicle: in.Vehicle.Label(), Err: checkInsurance(in.Vehicle, in.Scenario)}
	}
	var base float64
	switch rule.Method {
	case scenario.InsuranceResidualPercent:
		base = rule.Percent * in.Vehicle.ResidualValue(float64(in.YearIndex))
	default:
		base = rule.Amount
	}
	return scenario.Escalate(base, in.Scenario.Escalation.Insurance, in.YearIndex), nil
}

func registrationCost(in Input, _ *RunState) (float64, error) {
	fee := scenario.Escalate(in.Vehicle.RegistrationBase, in.Scenario.Escalation.Registration, in.YearIndex)
	if in.Vehicle.Drivetrain == model.DrivetrainBEV {
		fee *= 1 - in.Scenario.Incentives.RegistrationExemption
	}
	return fee, nil
}

func carbonTaxCost(in Input, _ *RunState) (float64, error) {
	rate, err := in.Scenario.CarbonTax.Series().Lookup("carbon tax", in.Year)
	if err != nil {
		return 0, &MissingDataError{Kind: KindCarbonTax, Vehicle: in.Vehicle.Label(), Err: err}
	}
	litres := in.Vehicle.AnnualEnergy(in.DistanceKm)
	tonnes := litres * in.Vehicle.Diesel.CO2KgPerLitre / 1000
	return tonnes * rate, nil
}

func roadUserChargeCost(in Input, _ *RunState) (float64, error) {
	rate, err := in.Scenario.RoadUserCharge.Series().Lookup("road user charge", in.Year)
	if err != nil {
		return 0, &MissingDataError{Kind: KindRoadUserCharge, Vehicle: in.Vehicle.Label(), Err: err}
	}
	return in.DistanceKm * rate, nil
}

func residualValueCost(in Input, _ *RunState) (float64, error) {
	if in.YearIndex != in.Scenario.Horizon-1 {
		return 0, nil
	}
	return -in.Vehicle.ResidualValue(float64(in.Scenario.Horizon)), nil
}
