package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelease/internal/common/logger"
)

func TestRecordPipelineRun_Exported(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := NewWithRegisterer("planner-test", reg, logger.NewTestLogger(t))
	defer obs.Shutdown()

	obs.RecordPipelineRun(context.Background(), "plan", "success", 12*time.Millisecond)
	obs.RecordOracleLatency(context.Background(), "select", 40*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"pipeline_runs_total",
		"pipeline_duration_milliseconds",
		"oracle_latency_milliseconds",
	} {
		assert.True(t, names[want], "missing metric family %s in %v", want, names)
	}
	for name := range names {
		assert.NotContains(t, name, ".", "metric family %s is not underscore escaped", name)
	}
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordPipelineRun(context.Background(), "plan", "success", time.Second)
		obs.RecordOracleLatency(context.Background(), "select", time.Second)
		obs.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() {
		empty.RecordPipelineRun(context.Background(), "plan", "error", time.Second)
	})
}
