// Package metrics provides observability primitives for the BB84 simulator.
//
// The package includes:
//   - structured leveled logging (text and JSON formats)
//   - a Collector for protocol-run and cipher-operation metrics
//   - Prometheus-compatible metrics export
//   - health check functionality
//   - a Tracer interface with an OpenTelemetry adapter (build tag "otel")
package metrics
