package tco

import (
	"fmt"

	"vehicle-tco/internal/cost"
	"vehicle-tco/internal/model"
)

// Warning is a recoverable per-component fault. The affected cell was zeroed.
type Warning struct {
	Vehicle   string    `json:"vehicle"`
	Component cost.Kind `json:"component"`
	Year      int       `json:"year"`
	YearIndex int       `json:"year_index"`
	Message   string    `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s year %d (index %d): %s", w.Vehicle, w.Component, w.Year, w.YearIndex, w.Message)
}

// Result is one vehicle's TCO under one scenario.
type Result struct {
	Vehicle    string
	Drivetrain model.Drivetrain

	Undiscounted *Table
	Discounted   *Table

	// TotalTCO is the sum of discounted totals.
	TotalTCO float64
	// LCOD is TotalTCO per undiscounted lifetime km; nil when no distance
	// is driven.
	LCOD *float64

	// AnnualDistanceKm is the distance actually driven per year, which
	// differs from the scenario distance when payload adjustment applies.
	AnnualDistanceKm   float64
	LifetimeDistanceKm float64
	EmissionsTonnes    float64

	// AnnualOperatingCost is the mean undiscounted running cost per year.
	// Capital items and resale are excluded.
	AnnualOperatingCost float64
	// DiscountedOperatingCost is the discounted sum of the same columns.
	DiscountedOperatingCost float64

	// ExternalityPerKm is the social cost of the vehicle's pollutants per km.
	ExternalityPerKm float64
	// ExternalityCost is the discounted externality cost over the horizon.
	ExternalityCost float64
	Externalities   []ExternalityItem
	// SocialTCO is TotalTCO plus ExternalityCost.
	SocialTCO float64
	// SocialLCOD is SocialTCO per lifetime km; nil when no distance is
	// driven. SocialCostPerTonneKm divides it by payload and is nil without
	// one.
	SocialLCOD           *float64
	SocialCostPerTonneKm *float64

	// BatteryReplacementYearIndex is nil when no replacement happened.
	BatteryReplacementYearIndex *int

	Warnings []Warning
}

// Comparison is the result of comparing vehicle A against vehicle B.
type Comparison struct {
	A *Result
	B *Result

	// TCODifference is A.TotalTCO - B.TotalTCO.
	TCODifference float64
	// UpfrontDifference compares undiscounted index-0 totals.
	UpfrontDifference float64
	// TCORatio is A.TotalTCO / B.TotalTCO; nil when B's TCO is zero.
	TCORatio *float64

	// ParityYearIndex is the first index where A's cumulative undiscounted
	// cost is <= B's. nil means parity is not reached within the horizon.
	ParityYearIndex *int
	ParityYear      *int

	// EmissionsSavedTonnes is B's lifetime emissions minus A's.
	EmissionsSavedTonnes float64
	// AbatementCost is TCODifference per tonne saved; nil when nothing is
	// saved.
	AbatementCost *float64

	// AnnualOperatingSavings is B's AnnualOperatingCost minus A's.
	AnnualOperatingSavings float64
	// ExternalitySavings is B's ExternalityCost minus A's.
	ExternalitySavings float64
	// SocialTCODifference is A.SocialTCO - B.SocialTCO.
	SocialTCODifference float64
	// SocialBenefitCostRatio is A's discounted operating and externality
	// savings over its upfront premium. nil when A costs no more upfront.
	SocialBenefitCostRatio *float64
	// SocialAbatementCost is SocialTCODifference per tonne saved; nil when
	// nothing is saved.
	SocialAbatementCost *float64

	Warnings []Warning
}

// HasWarnings reports whether either run recorded a component fault.
func (c *Comparison) HasWarnings() bool { return len(c.Warnings) > 0 }

func floatPtr(x float64) *float64 { return &x }

func intPtr(x int) *int { return &x }
