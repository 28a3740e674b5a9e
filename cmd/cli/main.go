package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vehicle-tco/internal/config"
	"vehicle-tco/internal/data"
	"vehicle-tco/internal/sensitivity"
	"vehicle-tco/internal/tco"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:          "tco",
		Short:        "Total cost of ownership: battery-electric versus diesel trucks",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "examples/config.yaml", "Path to YAML or JSON config")

	rootCmd.AddCommand(calculateCmd(&cfgPath))
	rootCmd.AddCommand(sweepCmd(&cfgPath))
	rootCmd.AddCommand(tornadoCmd(&cfgPath))
	rootCmd.AddCommand(validateCmd(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func calculateCmd(cfgPath *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compare vehicle A against vehicle B and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			in, err := loadInputs(*cfgPath)
			if err != nil {
				return err
			}
			cmp, err := tco.New(tco.Options{}).Compare(in.A, in.B, in.Scenario)
			if err != nil {
				return err
			}
			printComparison(cmp)

			if outDir == "" {
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, r := range []*tco.Result{cmp.A, cmp.B} {
				tables := []struct {
					suffix string
					table  *tco.Table
				}{{"undiscounted", r.Undiscounted}, {"discounted", r.Discounted}}
				for _, t := range tables {
					path := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", r.Vehicle, t.suffix))
					if err := tco.WriteTableCSV(path, t.table); err != nil {
						return err
					}
					fmt.Printf("Wrote %d rows to %s\n", len(t.table.Rows), path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for annual cost CSVs (optional)")
	return cmd
}

func sweepCmd(cfgPath *string) *cobra.Command {
	var (
		param  string
		values string
		points int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-run the comparison across a range of one parameter",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := sensitivity.ParseParameter(param)
			if err != nil {
				return err
			}
			vals, err := parseFloats(values)
			if err != nil {
				return err
			}
			in, err := loadInputs(*cfgPath)
			if err != nil {
				return err
			}
			if len(vals) == 0 {
				if vals, err = sensitivity.RangeFor(p, in.Scenario, points); err != nil {
					return err
				}
			}

			res, err := sensitivity.NewEngine(sensitivity.Options{}).Sweep(in.A, in.B, in.Scenario, p, vals)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s), base %g\n", p.Label(), p.Unit(), res.BaseValue)
			fmt.Printf("%-12s %-16s %-16s %-16s %-8s\n", "value", "tco_a", "tco_b", "difference", "parity")
			for _, pt := range res.Points {
				marker := ""
				if pt.Value == res.BaseValue {
					marker = " *"
				}
				fmt.Printf("%-12g %-16s %-16s %-16s %-8s%s\n",
					pt.Value,
					tco.FormatMoney(pt.Comparison.A.TotalTCO),
					tco.FormatMoney(pt.Comparison.B.TotalTCO),
					tco.FormatMoney(pt.Comparison.TCODifference),
					optInt(pt.Comparison.ParityYear),
					marker,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&param, "param", "p", "", "Parameter to sweep (see tornado output for names)")
	cmd.Flags().StringVar(&values, "values", "", "Comma-separated values; default range when empty")
	cmd.Flags().IntVar(&points, "points", sensitivity.DefaultPoints, "Points in the default range")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}

func tornadoCmd(cfgPath *string) *cobra.Command {
	var (
		metric string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "tornado",
		Short: "Rank parameters by how far their default range moves the outcome",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			m, err := sensitivity.ParseMetric(metric)
			if err != nil {
				return err
			}
			var ps []sensitivity.Parameter
			for _, name := range params {
				p, err := sensitivity.ParseParameter(strings.TrimSpace(name))
				if err != nil {
					return err
				}
				ps = append(ps, p)
			}
			in, err := loadInputs(*cfgPath)
			if err != nil {
				return err
			}

			bars, err := sensitivity.NewEngine(sensitivity.Options{}).Tornado(in.A, in.B, in.Scenario, ps, m)
			if err != nil {
				return err
			}

			fmt.Printf("metric: %s\n", m)
			fmt.Printf("%-4s %-36s %-24s %-16s %-16s %-16s\n", "rank", "parameter", "low/base/high", "low impact", "high impact", "swing")
			for i, b := range bars {
				fmt.Printf("%-4d %-36s %-24s %-16s %-16s %-16s\n",
					i+1,
					b.Label,
					fmt.Sprintf("%g/%g/%g", b.LowValue, b.BaseValue, b.HighValue),
					tco.FormatMoney(b.LowImpact()),
					tco.FormatMoney(b.HighImpact()),
					tco.FormatMoney(b.Swing),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", string(sensitivity.MetricTCODifference), "tco_difference, lcod_a or social_tco_difference")
	cmd.Flags().StringSliceVar(&params, "params", nil, "Parameters to include (default: all)")
	return cmd
}

func validateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a config without running the calculation",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			in, err := loadInputs(*cfgPath)
			if err != nil {
				return err
			}
			s := in.Scenario
			fmt.Printf("OK: %s (%s) vs %s (%s), %d-%d, %d years\n",
				in.A.Label(), in.A.Drivetrain, in.B.Label(), in.B.Drivetrain,
				s.StartYear, s.Year(s.Horizon-1), s.Horizon)
			return nil
		},
	}
}

func loadInputs(path string) (*config.Inputs, error) {
	cfg, err := data.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func printComparison(cmp *tco.Comparison) {
	fmt.Printf("%-22s %-18s %-18s\n", "", cmp.A.Vehicle, cmp.B.Vehicle)
	fmt.Printf("%-22s %-18s %-18s\n", "drivetrain", cmp.A.Drivetrain, cmp.B.Drivetrain)
	fmt.Printf("%-22s %-18s %-18s\n", "total TCO (AUD)", tco.FormatMoney(cmp.A.TotalTCO), tco.FormatMoney(cmp.B.TotalTCO))
	fmt.Printf("%-22s %-18s %-18s\n", "LCOD (AUD/km)", optFloat(cmp.A.LCOD), optFloat(cmp.B.LCOD))
	fmt.Printf("%-22s %-18.0f %-18.0f\n", "annual km", cmp.A.AnnualDistanceKm, cmp.B.AnnualDistanceKm)
	fmt.Printf("%-22s %-18.1f %-18.1f\n", "emissions (t CO2)", cmp.A.EmissionsTonnes, cmp.B.EmissionsTonnes)
	fmt.Printf("%-22s %-18s %-18s\n", "operating (AUD/yr)", tco.FormatMoney(cmp.A.AnnualOperatingCost), tco.FormatMoney(cmp.B.AnnualOperatingCost))
	fmt.Printf("%-22s %-18s %-18s\n", "externalities (AUD)", tco.FormatMoney(cmp.A.ExternalityCost), tco.FormatMoney(cmp.B.ExternalityCost))
	fmt.Printf("%-22s %-18s %-18s\n", "social TCO (AUD)", tco.FormatMoney(cmp.A.SocialTCO), tco.FormatMoney(cmp.B.SocialTCO))
	fmt.Printf("%-22s %-18s %-18s\n", "social (AUD/t-km)", optRate(cmp.A.SocialCostPerTonneKm), optRate(cmp.B.SocialCostPerTonneKm))
	fmt.Printf("%-22s %-18s %-18s\n", "battery replaced", optInt(cmp.A.BatteryReplacementYearIndex), optInt(cmp.B.BatteryReplacementYearIndex))
	fmt.Println()
	fmt.Printf("TCO difference (A-B): %s\n", tco.FormatMoney(cmp.TCODifference))
	fmt.Printf("Upfront difference:   %s\n", tco.FormatMoney(cmp.UpfrontDifference))
	fmt.Printf("TCO ratio (A/B):      %s\n", optFloat(cmp.TCORatio))
	fmt.Printf("Parity year:          %s\n", optInt(cmp.ParityYear))
	fmt.Printf("Emissions saved (t):  %.1f\n", cmp.EmissionsSavedTonnes)
	fmt.Printf("Abatement (AUD/t):    %s\n", optFloat(cmp.AbatementCost))
	fmt.Printf("Operating savings/yr: %s\n", tco.FormatMoney(cmp.AnnualOperatingSavings))
	fmt.Printf("Social TCO diff:      %s\n", tco.FormatMoney(cmp.SocialTCODifference))
	fmt.Printf("Social BCR:           %s\n", optFloat(cmp.SocialBenefitCostRatio))
	fmt.Printf("Social abatement:     %s\n", optFloat(cmp.SocialAbatementCost))
	for _, w := range cmp.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func optFloat(x *float64) string {
	if x == nil {
		return "n/a"
	}
	return tco.FormatMoney(*x)
}

// optRate prints small per-unit rates that FormatMoney would round away.
func optRate(x *float64) string {
	if x == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*x, 'f', 4, 64)
}

func optInt(x *int) string {
	if x == nil {
		return "never"
	}
	return strconv.Itoa(*x)
}
