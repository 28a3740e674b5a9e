package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_tco_calculations_total",
			Help: "Total number of single-vehicle TCO runs per drivetrain and outcome",
		},
		[]string{"drivetrain", "outcome"},
	)

	CalculationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_tco_calculation_duration_seconds",
			Help:    "Duration of single-vehicle TCO runs per drivetrain",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"drivetrain"},
	)

	ComponentFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_tco_component_faults_total",
			Help: "Recoverable cost component faults per component",
		},
		[]string{"component"},
	)

	SweepPointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_tco_sweep_points_total",
			Help: "Sensitivity sweep points evaluated per parameter",
		},
		[]string{"parameter"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_tco_cache_lookups_total",
			Help: "Result cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vehicle_tco_cache_entries",
			Help: "Entries currently held in the result cache",
		},
	)
)

// ObserveCalculation records one vehicle run.
func ObserveCalculation(drivetrain string, startedAt time.Time, err error) {
	CalculationDurationSeconds.WithLabelValues(drivetrain).Observe(time.Since(startedAt).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CalculationsTotal.WithLabelValues(drivetrain, outcome).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}
