package price

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Mode records how a Series was authored. It does not change how values are
// resolved; every mode ends up as a sorted list of anchors.
type Mode string

const (
	ModeConstant      Mode = "constant"
	ModeYearly        Mode = "yearly"
	ModeAveragedRange Mode = "averaged_range"
	ModeBlended       Mode = "blended"
	ModeEscalating    Mode = "escalating"
	ModeWeighted      Mode = "weighted"
)

// ErrEmptySeries is returned when a series is built from no anchors.
var ErrEmptySeries = errors.New("price series has no anchors")

// MissingError signals that no value could be resolved for a year.
// Callers decide whether to fail or supply an explicit fallback.
type MissingError struct {
	Name string
	Year int
}

func (e *MissingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("no price data for year %d", e.Year)
	}
	return fmt.Sprintf("no %s data for year %d", e.Name, e.Year)
}

// Anchor is one authored (year, value) point.
type Anchor struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}

// Point is a table cell: either an exact value (Min == Max) or a [min,max]
// band which resolves to its arithmetic mean.
type Point struct {
	Min float64
	Max float64
}

// Exact returns a Point holding a single value.
func Exact(v float64) Point { return Point{Min: v, Max: v} }

// Mid is the value a Point contributes to interpolation.
func (p Point) Mid() float64 { return (p.Min + p.Max) / 2 }

// Table is a sparse year -> value mapping.
type Table map[int]Point

// Series resolves a per-year scalar. Inside the authored range values are
// linearly interpolated; outside it the nearest anchor is held flat.
//
// A Series is immutable once built and safe for concurrent reads.
type Series struct {
	mode    Mode
	anchors []Anchor
}

// NewSeries builds a yearly series. Anchors are sorted by year; duplicate
// years and non-finite values are rejected.
func NewSeries(anchors []Anchor) (*Series, error) {
	return newSeries(ModeYearly, anchors)
}

func newSeries(mode Mode, anchors []Anchor) (*Series, error) {
	if len(anchors) == 0 {
		return nil, ErrEmptySeries
	}
	out := make([]Anchor, len(anchors))
	copy(out, anchors)
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	for i, a := range out {
		if math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
			return nil, fmt.Errorf("price anchor for year %d is not finite", a.Year)
		}
		if i > 0 && out[i-1].Year == a.Year {
			return nil, fmt.Errorf("duplicate price anchor for year %d", a.Year)
		}
	}
	return &Series{mode: mode, anchors: out}, nil
}

// Constant returns a series with the same value for every year.
func Constant(v float64) *Series {
	return &Series{mode: ModeConstant, anchors: []Anchor{{Year: 0, Value: v}}}
}

// FromTable builds a series from a sparse table. Ranged cells resolve to
// their mean before interpolation.
func FromTable(t Table) (*Series, error) {
	anchors := make([]Anchor, 0, len(t))
	ranged := false
	for year, p := range t {
		if p.Min > p.Max {
			return nil, fmt.Errorf("price range for year %d has min %.4f > max %.4f", year, p.Min, p.Max)
		}
		if p.Min != p.Max {
			ranged = true
		}
		anchors = append(anchors, Anchor{Year: year, Value: p.Mid()})
	}
	mode := ModeYearly
	if ranged {
		mode = ModeAveragedRange
	}
	return newSeries(mode, anchors)
}

// Escalating generates base*(1+rate)^i for every year of a horizon. It has a
// value for each year by construction, so nothing is interpolated.
func Escalating(base, rate float64, startYear, years int) (*Series, error) {
	if years < 1 {
		return nil, ErrEmptySeries
	}
	anchors := make([]Anchor, years)
	for i := 0; i < years; i++ {
		anchors[i] = Anchor{Year: startYear + i, Value: base * math.Pow(1+rate, float64(i))}
	}
	return newSeries(ModeEscalating, anchors)
}

// Blend resolves a pair of series to their year-by-year mean over the union
// of both anchor years.
func Blend(a, b *Series) (*Series, error) {
	if a == nil || b == nil {
		return nil, ErrEmptySeries
	}
	years := map[int]struct{}{}
	for _, x := range a.anchors {
		years[x.Year] = struct{}{}
	}
	for _, x := range b.anchors {
		years[x.Year] = struct{}{}
	}
	anchors := make([]Anchor, 0, len(years))
	for y := range years {
		anchors = append(anchors, Anchor{Year: y, Value: (a.ValueAt(y) + b.ValueAt(y)) / 2})
	}
	return newSeries(ModeBlended, anchors)
}

// Share is one weighted part of a mix.
type Share struct {
	Series *Series
	Weight float64
}

// Weighted resolves the year-by-year weighted mean of parts over the union of
// their anchor years. Weights are normalised, so 60/40 and 0.6/0.4 give the
// same series.
func Weighted(parts []Share) (*Series, error) {
	if len(parts) == 0 {
		return nil, ErrEmptySeries
	}
	total := 0.0
	years := map[int]struct{}{}
	for i, p := range parts {
		if p.Series == nil {
			return nil, fmt.Errorf("mix part %d has no series", i)
		}
		if p.Weight < 0 || math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
			return nil, fmt.Errorf("mix part %d weight %v must be finite and >= 0", i, p.Weight)
		}
		total += p.Weight
		for _, a := range p.Series.anchors {
			years[a.Year] = struct{}{}
		}
	}
	if total <= 0 {
		return nil, errors.New("mix weights must not all be 0")
	}
	anchors := make([]Anchor, 0, len(years))
	for y := range years {
		v := 0.0
		for _, p := range parts {
			v += p.Series.ValueAt(y) * p.Weight / total
		}
		anchors = append(anchors, Anchor{Year: y, Value: v})
	}
	return newSeries(ModeWeighted, anchors)
}

// Mode reports how the series was authored.
func (s *Series) Mode() Mode { return s.mode }

// Anchors returns a copy of the resolved anchor points.
func (s *Series) Anchors() []Anchor {
	out := make([]Anchor, len(s.anchors))
	copy(out, s.anchors)
	return out
}

// ValueAt returns the value for a calendar year.
func (s *Series) ValueAt(year int) float64 {
	return s.At(float64(year))
}

// At is ValueAt for fractional years.
func (s *Series) At(year float64) float64 {
	xs := make([]float64, len(s.anchors))
	ys := make([]float64, len(s.anchors))
	for i, a := range s.anchors {
		xs[i] = float64(a.Year)
		ys[i] = a.Value
	}
	return Interpolate(xs, ys, year)
}

// Lookup is the fallible form of ValueAt: a nil series yields a MissingError
// instead of a silent default.
func (s *Series) Lookup(name string, year int) (float64, error) {
	if s == nil || len(s.anchors) == 0 {
		return 0, &MissingError{Name: name, Year: year}
	}
	return s.ValueAt(year), nil
}

// Scale returns a new series with every anchor multiplied by f.
func (s *Series) Scale(f float64) *Series {
	out := &Series{mode: s.mode, anchors: make([]Anchor, len(s.anchors))}
	for i, a := range s.anchors {
		out.anchors[i] = Anchor{Year: a.Year, Value: a.Value * f}
	}
	return out
}

// Interpolate evaluates a piecewise-linear curve through (xs[i], ys[i]) at x,
// holding the end values flat outside [xs[0], xs[n-1]]. xs must be sorted
// ascending without duplicates and len(xs) == len(ys) > 0.
func Interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	// First index with xs[i] >= x; x is strictly inside the range here.
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}
