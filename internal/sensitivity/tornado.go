package sensitivity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
	"vehicle-tco/internal/tco"
)

// Metric is the outcome a tornado chart ranks.
type Metric string

const (
	// MetricTCODifference is A's TCO minus B's TCO.
	MetricTCODifference Metric = "tco_difference"
	// MetricLCODA is vehicle A's levelised cost of driving.
	MetricLCODA Metric = "lcod_a"
	// MetricSocialTCODifference is A's social TCO minus B's.
	MetricSocialTCODifference Metric = "social_tco_difference"
)

// ParseMetric validates a metric name. Empty selects MetricTCODifference.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricTCODifference, MetricLCODA, MetricSocialTCODifference:
		return Metric(s), nil
	case "":
		return MetricTCODifference, nil
	default:
		return "", fmt.Errorf("unknown tornado metric %q", s)
	}
}

// Outcome extracts m from a comparison.
func (m Metric) Outcome(c *tco.Comparison) (float64, error) {
	switch m {
	case MetricLCODA:
		if c.A.LCOD == nil {
			return 0, errors.New("LCOD is undefined at zero distance")
		}
		return *c.A.LCOD, nil
	case MetricSocialTCODifference:
		return c.SocialTCODifference, nil
	default:
		return c.TCODifference, nil
	}
}

// Bar is one parameter's swing between the ends of its range.
type Bar struct {
	Parameter Parameter
	Label     string

	BaseValue float64
	LowValue  float64
	HighValue float64

	BaseOutcome float64
	LowOutcome  float64
	HighOutcome float64

	// Swing is |HighOutcome - LowOutcome|.
	Swing float64
}

// LowImpact is the change from base at the low end of the range.
func (b Bar) LowImpact() float64 { return b.LowOutcome - b.BaseOutcome }

// HighImpact is the change from base at the high end of the range.
func (b Bar) HighImpact() float64 { return b.HighOutcome - b.BaseOutcome }

// Tornado evaluates each parameter at the ends of its default range and
// returns the bars sorted by swing, largest first. An empty params slice
// uses every parameter.
func (e *Engine) Tornado(a, b *model.Vehicle, s *scenario.Scenario, params []Parameter, m Metric) ([]Bar, error) {
	if len(params) == 0 {
		params = Parameters
	}
	baseCmp, err := e.calc.Compare(a, b, s)
	if err != nil {
		return nil, err
	}
	baseOutcome, err := m.Outcome(baseCmp)
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, 0, len(params))
	for _, p := range params {
		values, err := RangeFor(p, s, DefaultPoints)
		if err != nil {
			return nil, err
		}
		base, err := BaseValue(p, s)
		if err != nil {
			return nil, err
		}
		low, high := values[0], values[len(values)-1]

		lowOutcome, err := e.outcomeAt(a, b, s, p, base, low, m)
		if err != nil {
			return nil, err
		}
		highOutcome, err := e.outcomeAt(a, b, s, p, base, high, m)
		if err != nil {
			return nil, err
		}
		// Payload adjustment changes the base case itself.
		pBase := baseOutcome
		if p == ParamDistancePayload {
			if pBase, err = e.outcomeAt(a, b, s, p, base, base, m); err != nil {
				return nil, err
			}
		}

		bars = append(bars, Bar{
			Parameter:   p,
			Label:       p.Label(),
			BaseValue:   base,
			LowValue:    low,
			HighValue:   high,
			BaseOutcome: pBase,
			LowOutcome:  lowOutcome,
			HighOutcome: highOutcome,
			Swing:       math.Abs(highOutcome - lowOutcome),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Swing > bars[j].Swing
	})
	e.logger.Printf("[sensitivity] tornado on %s over %d parameters", m, len(bars))
	return bars, nil
}

func (e *Engine) outcomeAt(a, b *model.Vehicle, s *scenario.Scenario, p Parameter, base, value float64, m Metric) (float64, error) {
	derived, err := Apply(p, s, base, value)
	if err != nil {
		return 0, err
	}
	cmp, err := e.calc.Compare(a, b, derived)
	if err != nil {
		return 0, fmt.Errorf("%s = %g: %w", p, value, err)
	}
	return m.Outcome(cmp)
}
