package tco

import (
	"math"

	"vehicle-tco/internal/cost"
)

// Row is one analysis year. Values line up with Table.Columns.
type Row struct {
	Year      int
	YearIndex int
	Values    []float64
	Total     float64
}

// Table is an annual cost table, ordered by year index. Tables are not
// modified after they are built; Discounted and Cumulative return copies.
type Table struct {
	Columns []cost.Kind
	Rows    []Row
}

// Column returns one component's values by year, or false if the component
// did not apply.
func (t *Table) Column(k cost.Kind) ([]float64, bool) {
	col := -1
	for i, c := range t.Columns {
		if c == k {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[col]
	}
	return out, true
}

// Totals returns the Total column.
func (t *Table) Totals() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Total
	}
	return out
}

// Sum is the sum of the Total column.
func (t *Table) Sum() float64 {
	sum := 0.0
	for _, r := range t.Rows {
		sum += r.Total
	}
	return sum
}

// Discounted returns a copy with every cell multiplied by 1/(1+rate)^index.
func (t *Table) Discounted(rate float64) *Table {
	out := &Table{Columns: t.Columns, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		f := DiscountFactor(rate, r.YearIndex)
		vals := make([]float64, len(r.Values))
		total := 0.0
		for j, v := range r.Values {
			vals[j] = v * f
			total += vals[j]
		}
		out.Rows[i] = Row{Year: r.Year, YearIndex: r.YearIndex, Values: vals, Total: total}
	}
	return out
}

// Cumulative returns the running sum of the Total column.
func (t *Table) Cumulative() []float64 {
	out := make([]float64, len(t.Rows))
	cum := 0.0
	for i, r := range t.Rows {
		cum += r.Total
		out[i] = cum
	}
	return out
}

// DiscountFactor is 1/(1+rate)^index. Index 0 is undiscounted.
func DiscountFactor(rate float64, index int) float64 {
	return 1 / math.Pow(1+rate, float64(index))
}
