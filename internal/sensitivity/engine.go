package sensitivity

import (
	"errors"
	"fmt"
	"log"

	"vehicle-tco/internal/metrics"
	"vehicle-tco/internal/model"
	"vehicle-tco/internal/scenario"
	"vehicle-tco/internal/tco"
)

// Options configures an Engine.
type Options struct {
	Calculator *tco.Calculator
	Logger     *log.Logger
}

// Engine re-runs the calculator across derived scenarios.
type Engine struct {
	calc   *tco.Calculator
	logger *log.Logger
}

// NewEngine returns an Engine. A nil Calculator gets one sharing the logger.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	calc := opts.Calculator
	if calc == nil {
		calc = tco.New(tco.Options{Logger: logger})
	}
	return &Engine{calc: calc, logger: logger}
}

// Point is one swept value and its comparison.
type Point struct {
	Value      float64
	Comparison *tco.Comparison
}

// SweepResult is ordered by Value ascending and always contains BaseValue.
type SweepResult struct {
	Parameter Parameter
	BaseValue float64
	Points    []Point
}

// Base returns the point at the base value.
func (r *SweepResult) Base() (Point, bool) {
	for _, p := range r.Points {
		if p.Value == r.BaseValue {
			return p, true
		}
	}
	return Point{}, false
}

// Sweep compares a and b once per value. An empty values slice uses the
// default range for p. The base value is always included. Values of an
// integer parameter are rounded before use, so points are labelled with
// the value actually applied.
func (e *Engine) Sweep(a, b *model.Vehicle, s *scenario.Scenario, p Parameter, values []float64) (*SweepResult, error) {
	if s == nil {
		return nil, errors.New("scenario is nil")
	}
	base, err := BaseValue(p, s)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		values, err = RangeFor(p, s, DefaultPoints)
		if err != nil {
			return nil, err
		}
	} else {
		if rp, ok := Policy(p); ok && rp.Integer {
			values = rounded(values)
		}
		values = WithBase(values, base)
	}

	out := &SweepResult{Parameter: p, BaseValue: base, Points: make([]Point, 0, len(values))}
	for _, v := range values {
		derived, err := Apply(p, s, base, v)
		if err != nil {
			return nil, err
		}
		cmp, err := e.calc.Compare(a, b, derived)
		if err != nil {
			return nil, fmt.Errorf("%s = %g: %w", p, v, err)
		}
		metrics.SweepPointsTotal.WithLabelValues(string(p)).Inc()
		out.Points = append(out.Points, Point{Value: v, Comparison: cmp})
	}
	e.logger.Printf("[sensitivity] swept %s over %d values (base %g)", p, len(out.Points), base)
	return out, nil
}
