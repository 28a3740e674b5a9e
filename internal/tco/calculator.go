package tco

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"vehicle-tco/internal/cost"
	"vehicle-tco/internal/metrics"
	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
)

// Options configures a Calculator.
type Options struct {
	Logger *log.Logger
}

// Calculator turns a vehicle and a scenario into annual cost tables and
// summary metrics. It holds no run state and is safe for concurrent use.
type Calculator struct {
	logger *log.Logger
}

// New returns a Calculator. A nil logger uses log.Default().
func New(opts Options) *Calculator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Calculator{logger: logger}
}

// Calculate runs one vehicle over the scenario horizon at the scenario's
// annual distance.
func (c *Calculator) Calculate(v *model.Vehicle, s *scenario.Scenario) (*Result, error) {
	if s == nil {
		return nil, errors.New("scenario is nil")
	}
	return c.run(v, s, s.AnnualDistanceKm)
}

// Compare runs both vehicles under the same scenario and derives the
// comparison metrics. With PayloadAdjusted set, the lower-payload vehicle
// drives proportionally further to move the same freight.
func (c *Calculator) Compare(a, b *model.Vehicle, s *scenario.Scenario) (*Comparison, error) {
	if a == nil || b == nil {
		return nil, errors.New("both vehicles are required")
	}
	if s == nil {
		return nil, errors.New("scenario is nil")
	}
	distA, distB := PayloadDistances(a, b, s)

	ra, err := c.run(a, s, distA)
	if err != nil {
		return nil, err
	}
	rb, err := c.run(b, s, distB)
	if err != nil {
		return nil, err
	}
	return compare(ra, rb, s), nil
}

// PayloadDistances returns the annual distance each vehicle drives. Without
// payload adjustment both drive the scenario distance.
func PayloadDistances(a, b *model.Vehicle, s *scenario.Scenario) (float64, float64) {
	d := s.AnnualDistanceKm
	if !s.PayloadAdjusted || a.PayloadTonnes <= 0 || b.PayloadTonnes <= 0 {
		return d, d
	}
	most := math.Max(a.PayloadTonnes, b.PayloadTonnes)
	return d * most / a.PayloadTonnes, d * most / b.PayloadTonnes
}

// run walks Select -> annual loop -> discounting -> aggregation for one
// vehicle. Run state is created here and never escapes.
func (c *Calculator) run(v *model.Vehicle, s *scenario.Scenario, distanceKm float64) (res *Result, err error) {
	if v == nil {
		return nil, errors.New("vehicle is nil")
	}
	started := time.Now()
	defer func() { metrics.ObserveCalculation(string(v.Drivetrain), started, err) }()

	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	comps, err := cost.Select(v, s)
	if err != nil {
		return nil, err
	}

	columns := make([]cost.Kind, len(comps))
	for i, comp := range comps {
		columns[i] = comp.Kind
	}
	undiscounted := &Table{Columns: columns, Rows: make([]Row, 0, s.Horizon)}

	st := cost.NewRunState()
	var warnings []Warning
	for idx := 0; idx < s.Horizon; idx++ {
		in := cost.Input{
			Year:         s.Year(idx),
			YearIndex:    idx,
			DistanceKm:   distanceKm,
			CumulativeKm: distanceKm * float64(idx),
			Vehicle:      v,
			Scenario:     s,
		}
		row := Row{Year: in.Year, YearIndex: idx, Values: make([]float64, len(comps))}
		for j, comp := range comps {
			x, cerr := evaluate(comp, in, st)
			if cerr != nil {
				var missing *cost.MissingDataError
				if errors.As(cerr, &missing) {
					return nil, cerr
				}
				w := Warning{
					Vehicle:   v.Label(),
					Component: comp.Kind,
					Year:      in.Year,
					YearIndex: idx,
					Message:   cerr.Error(),
				}
				c.logger.Printf("[tco] component fault, cell zeroed: %s", w)
				metrics.ComponentFaultsTotal.WithLabelValues(string(comp.Kind)).Inc()
				warnings = append(warnings, w)
				x = 0
			}
			row.Values[j] = x
			row.Total += x
		}
		undiscounted.Rows = append(undiscounted.Rows, row)
	}

	discounted := undiscounted.Discounted(s.DiscountRate)
	res = &Result{
		Vehicle:            v.Label(),
		Drivetrain:         v.Drivetrain,
		Undiscounted:       undiscounted,
		Discounted:         discounted,
		TotalTCO:           discounted.Sum(),
		AnnualDistanceKm:   distanceKm,
		LifetimeDistanceKm: s.AnnualDistanceKm * float64(s.Horizon),
		EmissionsTonnes:    v.EmissionsKg(distanceKm*float64(s.Horizon), s.GridEmissionFactor) / 1000,
		Warnings:           warnings,
	}
	res.AnnualOperatingCost = operatingCost(undiscounted) / float64(len(undiscounted.Rows))
	res.DiscountedOperatingCost = operatingCost(discounted)

	perKm, extCost, items, priced := externalities(v, s, distanceKm)
	if !priced && len(s.Externalities) > 0 {
		c.logger.Printf("[tco] no externality rates for %s (%s/%s), social cost equals TCO", v.Label(), v.Class, v.Drivetrain)
	}
	res.ExternalityPerKm = perKm
	res.ExternalityCost = extCost
	res.Externalities = items
	res.SocialTCO = res.TotalTCO + extCost

	if res.LifetimeDistanceKm > 0 {
		res.LCOD = floatPtr(res.TotalTCO / res.LifetimeDistanceKm)
		res.SocialLCOD = floatPtr(res.SocialTCO / res.LifetimeDistanceKm)
		if v.PayloadTonnes > 0 {
			res.SocialCostPerTonneKm = floatPtr(*res.SocialLCOD / v.PayloadTonnes)
		}
	}
	if st.BatteryReplaced {
		res.BatteryReplacementYearIndex = intPtr(st.ReplacementYearIndex)
	}
	return res, nil
}

// evaluate runs one component for one year. Panics and non-finite results
// come back as errors.
func evaluate(comp cost.Component, in cost.Input, st *cost.RunState) (x float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	x, err = comp.Cost(in, st)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("non-finite cost %v", x)
	}
	return x, nil
}

func compare(a, b *Result, s *scenario.Scenario) *Comparison {
	out := &Comparison{
		A:                    a,
		B:                    b,
		TCODifference:        a.TotalTCO - b.TotalTCO,
		EmissionsSavedTonnes: b.EmissionsTonnes - a.EmissionsTonnes,
	}
	if len(a.Undiscounted.Rows) > 0 && len(b.Undiscounted.Rows) > 0 {
		out.UpfrontDifference = a.Undiscounted.Rows[0].Total - b.Undiscounted.Rows[0].Total
	}
	if b.TotalTCO != 0 {
		out.TCORatio = floatPtr(a.TotalTCO / b.TotalTCO)
	}
	if idx, ok := ParityIndex(a.Undiscounted.Cumulative(), b.Undiscounted.Cumulative()); ok {
		out.ParityYearIndex = intPtr(idx)
		out.ParityYear = intPtr(s.Year(idx))
	}
	out.AnnualOperatingSavings = b.AnnualOperatingCost - a.AnnualOperatingCost
	out.ExternalitySavings = b.ExternalityCost - a.ExternalityCost
	out.SocialTCODifference = a.SocialTCO - b.SocialTCO
	if out.UpfrontDifference > 0 {
		benefits := b.DiscountedOperatingCost - a.DiscountedOperatingCost + out.ExternalitySavings
		out.SocialBenefitCostRatio = floatPtr(benefits / out.UpfrontDifference)
	}
	if out.EmissionsSavedTonnes > 0 {
		out.AbatementCost = floatPtr(out.TCODifference / out.EmissionsSavedTonnes)
		out.SocialAbatementCost = floatPtr(out.SocialTCODifference / out.EmissionsSavedTonnes)
	}
	out.Warnings = append(append(out.Warnings, a.Warnings...), b.Warnings...)
	return out
}

// ParityIndex returns the first index where cumA <= cumB.
func ParityIndex(cumA, cumB []float64) (int, bool) {
	n := len(cumA)
	if len(cumB) < n {
		n = len(cumB)
	}
	for i := 0; i < n; i++ {
		if cumA[i] <= cumB[i] {
			return i, true
		}
	}
	return 0, false
}
