// Package daemon hosts the labeld runtime: a single-instance file lock, the
// HTTP API server, and the Prometheus metrics endpoint.
//
// # Lifecycle
//
// New wires config, store, and logger into a Daemon. Start acquires the lock
// and begins serving; Stop shuts the server down and releases the lock; Close
// additionally closes the store. The daemon refuses to start when another
// instance holds the lock file.
//
// # HTTP Surface
//
// All image operations live under /api/v1 and speak the DTOs from
// internal/api. /healthz and /metrics are unauthenticated; everything under
// /api/v1 requires a bearer token when one is configured.
package daemon
