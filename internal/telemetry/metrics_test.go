package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RecordsProviderCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ProviderCallsTotal.WithLabelValues("openai", "success").Inc()
	m.ProviderCallDuration.WithLabelValues("openai").Observe(0.42)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.True(t, hasMetricFamily(families, "openclaw_provider_calls_total"))
	assert.True(t, hasMetricFamily(families, "openclaw_provider_call_duration_seconds"))
}

func TestNewMetrics_MemoryGaugesSettable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MemoryWorkingItems.Set(3)
	m.MemoryWorkingTokens.Set(120)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.True(t, hasMetricFamily(families, "openclaw_memory_working_items"))
}

func TestSetup_DisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := Setup(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func hasMetricFamily(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}
