package metrics_test

import (
	"strings"
	"testing"

	"github.com/myrjola/liftplan/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManager(t *testing.T) {
	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("liftplan", "web", reg)

	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.CounterSessionsCompleted.Inc()

	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	want := `
# HELP liftplan_web_sessions_completed_total The total number of workout sessions marked completed
# TYPE liftplan_web_sessions_completed_total counter
liftplan_web_sessions_completed_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"liftplan_web_sessions_completed_total"); err != nil {
		t.Error(err)
	}
	if n, err := testutil.GatherAndCount(reg, "go_goroutines"); err != nil || n != 1 {
		t.Errorf("go_goroutines count = %d, err %v", n, err)
	}
}
