package sensitivity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"vehicle-tco/internal/scenario"
)

// DefaultPoints is the number of points in a default sweep range.
const DefaultPoints = 11

// RangePolicy bounds a default sweep around a base value. Relative policies
// span base*(1-Below) .. base*(1+Above); absolute ones base-Below ..
// base+Above. Ceiling 0 means unbounded.
type RangePolicy struct {
	Below    float64
	Above    float64
	Absolute bool
	Floor    float64
	Ceiling  float64
	Integer  bool
}

var policies = map[Parameter]RangePolicy{
	ParamAnnualDistance:   {Below: 0.5, Above: 0.5, Floor: 1000},
	ParamDistancePayload:  {Below: 0.5, Above: 0.5, Floor: 1000},
	ParamDieselPrice:      {Below: 0.3, Above: 0.3, Floor: 0.05},
	ParamElectricityPrice: {Below: 0.3, Above: 0.3, Floor: 0.05},
	ParamVehicleLifetime:  {Below: 3, Above: 3, Absolute: true, Floor: 1, Integer: true},
	ParamDiscountRate:     {Below: 0.03, Above: 0.03, Absolute: true, Floor: 0.005, Ceiling: 0.15},
	ParamExternalityCost:  {Below: 50, Above: 100, Absolute: true, Floor: -100},
}

// Policy returns the default range policy for p.
func Policy(p Parameter) (RangePolicy, bool) {
	rp, ok := policies[p]
	return rp, ok
}

// DefaultRange returns points evenly spaced values around base under p's
// policy, with base itself always present.
func DefaultRange(p Parameter, base float64, points int) ([]float64, error) {
	rp, ok := policies[p]
	if !ok {
		return nil, fmt.Errorf("unknown sensitivity parameter %q", p)
	}
	return rp.Values(base, points)
}

// RangeFor is DefaultRange with floors tightened by the scenario: a lifetime
// sweep never drops to or below a forced battery replacement index.
func RangeFor(p Parameter, s *scenario.Scenario, points int) ([]float64, error) {
	rp, ok := policies[p]
	if !ok {
		return nil, fmt.Errorf("unknown sensitivity parameter %q", p)
	}
	if p == ParamVehicleLifetime && s.Battery.ForcedYearIndex != nil {
		rp.Floor = math.Max(rp.Floor, float64(*s.Battery.ForcedYearIndex+1))
	}
	base, err := BaseValue(p, s)
	if err != nil {
		return nil, err
	}
	return rp.Values(base, points)
}

// Values builds the range for one base value.
func (rp RangePolicy) Values(base float64, points int) ([]float64, error) {
	if points < 2 {
		return nil, errors.New("a sweep range needs at least 2 points")
	}
	lo, hi := base*(1-rp.Below), base*(1+rp.Above)
	if rp.Absolute {
		lo, hi = base-rp.Below, base+rp.Above
	}
	lo = math.Max(lo, rp.Floor)
	if rp.Ceiling > 0 {
		hi = math.Min(hi, rp.Ceiling)
	}
	if hi < lo {
		hi = lo
	}

	out := make([]float64, 0, points+1)
	step := (hi - lo) / float64(points-1)
	for i := 0; i < points; i++ {
		v := lo + step*float64(i)
		if rp.Integer {
			v = math.Round(v)
		}
		out = append(out, v)
	}
	if rp.Integer {
		base = math.Round(base)
	}
	return WithBase(out, base), nil
}

// WithBase returns values sorted ascending with duplicates removed and base
// present. A value within 1e-9 (relative) of base is replaced by base.
func WithBase(values []float64, base float64) []float64 {
	out := make([]float64, 0, len(values)+1)
	found := false
	for _, v := range values {
		if nearlyEqual(v, base) {
			v = base
			found = true
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, base)
	}
	sort.Float64s(out)

	uniq := out[:0]
	for i, v := range out {
		if i > 0 && v == uniq[len(uniq)-1] {
			continue
		}
		uniq = append(uniq, v)
	}
	return uniq
}

func rounded(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Round(v)
	}
	return out
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
