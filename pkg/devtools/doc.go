// Package devtools records what a bound tree does and serves it over HTTP.
//
// An Inspector is a bind.Observer that keeps the latest state of every node
// and a bounded history of engine events. A Server exposes it:
//
//	GET /healthz         liveness
//	GET /nodes           every node seen so far
//	GET /nodes/{id}      one node
//	GET /events          event history, ?since=<seq> for newer events only
//	GET /events/stream   websocket stream of live events
//	GET /metrics         Prometheus metrics
package devtools
