package config

import (
	"encoding/json"
	"fmt"

	"vehicle-tco/internal/price"
	"vehicle-tco/internal/scenario"

	"gopkg.in/yaml.v3"
)

// PriceCell is one table cell. In YAML and JSON it is either a number or a
// [min, max] pair.
type PriceCell price.Point

func (c *PriceCell) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: price must be a number or [min, max]: %w", n.Line, err)
		}
		*c = PriceCell(price.Exact(v))
		return nil
	case yaml.SequenceNode:
		var pair []float64
		if err := n.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		return c.setPair(pair)
	default:
		return fmt.Errorf("line %d: price must be a number or [min, max]", n.Line)
	}
}

func (c PriceCell) MarshalYAML() (any, error) {
	if c.Min == c.Max {
		return c.Min, nil
	}
	return []float64{c.Min, c.Max}, nil
}

func (c *PriceCell) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*c = PriceCell(price.Exact(v))
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("price must be a number or [min, max]")
	}
	return c.setPair(pair)
}

func (c PriceCell) MarshalJSON() ([]byte, error) {
	if c.Min == c.Max {
		return json.Marshal(c.Min)
	}
	return json.Marshal([]float64{c.Min, c.Max})
}

func (c *PriceCell) setPair(pair []float64) error {
	if len(pair) != 2 {
		return fmt.Errorf("price range must have exactly 2 values, got %d", len(pair))
	}
	*c = PriceCell{Min: pair[0], Max: pair[1]}
	return nil
}

// PriceTable is a sparse year -> cell mapping.
type PriceTable map[int]PriceCell

func (t PriceTable) toTable() price.Table {
	out := make(price.Table, len(t))
	for y, c := range t {
		out[y] = price.Point(c)
	}
	return out
}

// Series resolves the table. An empty table is an error.
func (t PriceTable) Series() (*price.Series, error) {
	return price.FromTable(t.toTable())
}

// PriceSelection chooses one named projection, optionally blended with a
// second one. For electricity, charging_mix weights several tables by share
// instead.
type PriceSelection struct {
	Scenario    string                `yaml:"scenario" json:"scenario"`
	BlendWith   string                `yaml:"blend_with,omitempty" json:"blend_with,omitempty"`
	ChargingMix map[string]float64    `yaml:"charging_mix,omitempty" json:"charging_mix,omitempty"`
	Tables      map[string]PriceTable `yaml:"tables" json:"tables"`
}

func (p PriceSelection) toModel() scenario.PriceSelection {
	tables := make(price.Tables, len(p.Tables))
	for name, t := range p.Tables {
		tables[name] = t.toTable()
	}
	return scenario.PriceSelection{
		Tables:      tables,
		Scenario:    p.Scenario,
		BlendWith:   p.BlendWith,
		ChargingMix: p.ChargingMix,
	}
}

// PricesConfig picks the energy price series for each fuel.
type PricesConfig struct {
	Electricity PriceSelection `yaml:"electricity" json:"electricity"`
	Diesel      PriceSelection `yaml:"diesel" json:"diesel"`
}
