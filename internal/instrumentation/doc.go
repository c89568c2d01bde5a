// Package instrumentation configures OpenTelemetry metrics and tracing.
//
// The Provider owns the meter and tracer providers; Metrics wraps the
// counters and histograms recorded for MCP tool invocations, Google API
// operations and the OAuth lifecycle. Everything is configured from the
// environment (INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER,
// OTEL_EXPORTER_OTLP_ENDPOINT) and degrades to no-ops when disabled.
package instrumentation
