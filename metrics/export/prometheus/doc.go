// Package prometheus provides Prometheus collectors for rentauth metrics.
//
// [NewPrometheusExporter] accepts a [rentauth.Engine] and exposes an [http.Handler]
// that renders all rentauth counters in Prometheus text exposition format.
// Counter names are prefixed rentauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
