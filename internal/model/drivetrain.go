package model

import "fmt"

// Drivetrain tags the Vehicle variant.
// Keep these values stable; they appear in config files and CSV output.
type Drivetrain string

const (
	DrivetrainBEV    Drivetrain = "BEV"
	DrivetrainDiesel Drivetrain = "Diesel"
)

// ParseDrivetrain accepts the canonical names plus a few common spellings.
func ParseDrivetrain(s string) (Drivetrain, error) {
	switch s {
	case "BEV", "bev", "electric", "Electric":
		return DrivetrainBEV, nil
	case "Diesel", "diesel", "ICE", "ice":
		return DrivetrainDiesel, nil
	default:
		return "", fmt.Errorf("unknown drivetrain %q", s)
	}
}

// EnergyUnit is the unit a vehicle buys its energy in.
type EnergyUnit string

const (
	UnitKWh   EnergyUnit = "kWh"
	UnitLitre EnergyUnit = "L"
)

// EnergyUnit is the unit d is refuelled in.
func (d Drivetrain) EnergyUnit() EnergyUnit {
	if d == DrivetrainBEV {
		return UnitKWh
	}
	return UnitLitre
}
