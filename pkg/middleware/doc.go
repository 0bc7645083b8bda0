// Package middleware provides observability for bound trees.
//
// Both observers plug into a Provider with bind.WithObserver:
//
//	p, err := bind.NewProvider(st,
//	    bind.WithObserver(middleware.OpenTelemetry(middleware.WithTracerName("todo"))),
//	    bind.WithObserver(middleware.Prometheus(middleware.WithNamespace("todo"))),
//	)
//
// # OpenTelemetry
//
// OpenTelemetry starts one span per notify pass and records every node
// recompute in that pass as a span event. Derivation failures are recorded
// as span errors. The tracer comes from the global provider unless
// WithTracerProvider is given.
//
// # Prometheus
//
// Prometheus collects:
//   - storebind_passes_total: notify passes by status
//   - storebind_pass_duration_seconds: notify pass duration
//   - storebind_updates_total: node recomputes by node and outcome
//   - storebind_derivation_errors_total: failed recomputes by node and stage
//   - storebind_mounted_nodes: mounted nodes by node
//
// Expose them with promhttp, or through the devtools server.
package middleware
