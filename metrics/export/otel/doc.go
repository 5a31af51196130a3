// Package otel provides OpenTelemetry metric exporter bindings for rentauth counters.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each rentauth
// metric. A single callback reads [rentauth.Engine.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
