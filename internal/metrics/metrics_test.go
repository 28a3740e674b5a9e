package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveCalculation(t *testing.T) {
	ok := CalculationsTotal.WithLabelValues("BEV", "ok")
	failed := CalculationsTotal.WithLabelValues("BEV", "error")
	okBefore, failedBefore := counterValue(t, ok), counterValue(t, failed)

	ObserveCalculation("BEV", time.Now(), nil)
	ObserveCalculation("BEV", time.Now(), errors.New("boom"))

	assert.Equal(t, okBefore+1, counterValue(t, ok))
	assert.Equal(t, failedBefore+1, counterValue(t, failed))
}

func TestObserveCacheLookup(t *testing.T) {
	hit := CacheLookupsTotal.WithLabelValues("hit")
	miss := CacheLookupsTotal.WithLabelValues("miss")
	hitBefore, missBefore := counterValue(t, hit), counterValue(t, miss)

	ObserveCacheLookup(true)
	ObserveCacheLookup(false)
	ObserveCacheLookup(false)

	assert.Equal(t, hitBefore+1, counterValue(t, hit))
	assert.Equal(t, missBefore+2, counterValue(t, miss))
}
