// Package telemetry owns the process-wide Prometheus collectors and the
// OpenTelemetry tracer used by the evaluation engine.
package telemetry
