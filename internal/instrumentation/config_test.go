package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "gcalphotos", config.ServiceName)
	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracingExporter)
	assert.Equal(t, "/metrics", config.PrometheusEndpoint)
	assert.InDelta(t, 0.1, config.TraceSamplingRate, 0.0001)
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")

	config := DefaultConfig()

	assert.Equal(t, "custom-service", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, ExporterStdout, config.MetricsExporter)
	assert.Equal(t, ExporterStdout, config.TracingExporter)
	assert.InDelta(t, 0.5, config.TraceSamplingRate, 0.0001)
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sampling rate below zero", func(c *Config) { c.TraceSamplingRate = -0.1 }},
		{"sampling rate above one", func(c *Config) { c.TraceSamplingRate = 1.5 }},
		{"bad metrics exporter", func(c *Config) { c.MetricsExporter = "statsd" }},
		{"bad tracing exporter", func(c *Config) { c.TracingExporter = "jaeger" }},
		{"otlp metrics without endpoint", func(c *Config) { c.MetricsExporter = ExporterOTLP }},
		{"otlp tracing without endpoint", func(c *Config) { c.TracingExporter = ExporterOTLP }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}
