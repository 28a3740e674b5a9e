package tco

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// WriteTableCSV writes an annual cost table to path.
func WriteTableCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTable(f, t)
}

// WriteTable writes one header row (year, year_index, one column per
// component, total) and one row per year. Money is rendered to the cent.
func WriteTable(out io.Writer, t *Table) error {
	w := csv.NewWriter(out)

	header := []string{"year", "year_index"}
	for _, k := range t.Columns {
		header = append(header, string(k))
	}
	header = append(header, "total")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range t.Rows {
		row := []string{strconv.Itoa(r.Year), strconv.Itoa(r.YearIndex)}
		for _, v := range r.Values {
			row = append(row, FormatMoney(v))
		}
		row = append(row, FormatMoney(r.Total))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// FormatMoney renders an AUD amount with two decimals, rounding half away
// from zero.
func FormatMoney(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}
