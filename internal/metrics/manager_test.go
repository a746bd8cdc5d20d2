package metrics_test

import (
	"strings"
	"testing"

	"github.com/myrjola/fitroadmap/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManager(t *testing.T) {
	t.Parallel()
	m, reg := metrics.NewTestManagerAndRegistry()

	m.CounterPlans.WithLabelValues("llm").Inc()
	m.CounterPlans.WithLabelValues("fallback").Add(2)
	m.CounterLogsSaved.Inc()

	if got := testutil.ToFloat64(m.CounterPlans.WithLabelValues("fallback")); got != 2 {
		t.Errorf("fallback plans = %v, want 2", got)
	}

	want := `
# HELP fitroadmap_test_daily_logs_saved_total The total number of saved daily logs
# TYPE fitroadmap_test_daily_logs_saved_total counter
fitroadmap_test_daily_logs_saved_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"fitroadmap_test_daily_logs_saved_total"); err != nil {
		t.Error(err)
	}

	// A second manager on another registry must not clash with the first.
	metrics.NewTestManagerAndRegistry()
}
