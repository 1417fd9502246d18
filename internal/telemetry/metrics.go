// Package telemetry exposes the process's ambient Prometheus metrics:
// per-registry health, task-state gauges, and tool-call counters. These
// are an operational add-on, not part of the MCP wire surface itself.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every gauge/counter the control plane exports.
type Metrics struct {
	RegistryHealthy   *prometheus.GaugeVec
	RegistryLatencyMS *prometheus.GaugeVec
	TasksByState      *prometheus.GaugeVec
	ToolCallsTotal     *prometheus.CounterVec
	ToolCallErrorsTotal *prometheus.CounterVec
}

// NewMetrics builds and registers every metric against registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		RegistryHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "schema_registry_mcp",
			Name:      "registry_healthy",
			Help:      "1 if the last health probe against this registry succeeded, else 0.",
		}, []string{"registry"}),
		RegistryLatencyMS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "schema_registry_mcp",
			Name:      "registry_latency_ms",
			Help:      "Latency in milliseconds of the last health probe against this registry.",
		}, []string{"registry"}),
		TasksByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "schema_registry_mcp",
			Name:      "tasks_by_state",
			Help:      "Number of tasks currently in each state.",
		}, []string{"state"}),
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schema_registry_mcp",
			Name:      "tool_calls_total",
			Help:      "Total MCP tool invocations, by tool name.",
		}, []string{"tool"}),
		ToolCallErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schema_registry_mcp",
			Name:      "tool_call_errors_total",
			Help:      "Total MCP tool invocations that returned an error, by tool name and error_code.",
		}, []string{"tool", "error_code"}),
	}

	registerer.MustRegister(m.RegistryHealthy, m.RegistryLatencyMS, m.TasksByState, m.ToolCallsTotal, m.ToolCallErrorsTotal)
	return m
}

// RecordRegistryHealth updates the health/latency gauges for one registry.
func (m *Metrics) RecordRegistryHealth(registry string, healthy bool, latencyMS int64) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.RegistryHealthy.WithLabelValues(registry).Set(value)
	m.RegistryLatencyMS.WithLabelValues(registry).Set(float64(latencyMS))
}

// RecordToolCall increments the call counter for tool, and the error
// counter when errorCode is non-empty.
func (m *Metrics) RecordToolCall(tool, errorCode string) {
	m.ToolCallsTotal.WithLabelValues(tool).Inc()
	if errorCode != "" {
		m.ToolCallErrorsTotal.WithLabelValues(tool, errorCode).Inc()
	}
}

// SetTaskStateCounts replaces the tasks_by_state gauge values wholesale,
// given a snapshot of counts per state.
func (m *Metrics) SetTaskStateCounts(counts map[string]int) {
	m.TasksByState.Reset()
	for state, count := range counts {
		m.TasksByState.WithLabelValues(state).Set(float64(count))
	}
}
