package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRegistryHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRegistryHealth("prod", true, 42)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RegistryHealthy.WithLabelValues("prod")), 0.0001)
	assert.InDelta(t, 42.0, testutil.ToFloat64(m.RegistryLatencyMS.WithLabelValues("prod")), 0.0001)

	m.RecordRegistryHealth("prod", false, 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.RegistryHealthy.WithLabelValues("prod")), 0.0001)
}

func TestRecordToolCall_CountsErrorsSeparately(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordToolCall("list_subjects", "")
	m.RecordToolCall("list_subjects", "REGISTRY_UNREACHABLE")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("list_subjects")), 0.0001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ToolCallErrorsTotal.WithLabelValues("list_subjects", "REGISTRY_UNREACHABLE")), 0.0001)
}

func TestNewMetrics_RegistersWithoutError(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { NewMetrics(reg) })
}
