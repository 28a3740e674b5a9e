package price

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScenario is wrapped when a selected price scenario name is not in
// the supplied table set.
var ErrUnknownScenario = errors.New("unknown price scenario")

// Tables holds named price projections, e.g. "central", "high".
type Tables map[string]Table

// Names returns the scenario names in sorted order.
func (t Tables) Names() []string {
	out := make([]string, 0, len(t))
	for name := range t {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve builds the series for one named scenario.
func (t Tables) Resolve(name string) (*Series, error) {
	tbl, ok := t[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScenario, name, strings.Join(t.Names(), ", "))
	}
	s, err := FromTable(tbl)
	if err != nil {
		return nil, fmt.Errorf("price scenario %q: %w", name, err)
	}
	return s, nil
}

// ResolvePair resolves two named scenarios and blends them.
func (t Tables) ResolvePair(a, b string) (*Series, error) {
	sa, err := t.Resolve(a)
	if err != nil {
		return nil, err
	}
	sb, err := t.Resolve(b)
	if err != nil {
		return nil, err
	}
	return Blend(sa, sb)
}

// ResolveMix resolves each named scenario and weights them by share, e.g. a
// charging mix of depot and public tariffs.
func (t Tables) ResolveMix(mix map[string]float64) (*Series, error) {
	names := make([]string, 0, len(mix))
	for name := range mix {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]Share, 0, len(names))
	for _, name := range names {
		s, err := t.Resolve(name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Share{Series: s, Weight: mix[name]})
	}
	return Weighted(parts)
}
