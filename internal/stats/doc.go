// Package stats emits periodic snapshots of the mirror's own state: uptime,
// upstream connection status, topic and client counts, and (when configured)
// gauges scraped from the server's Prometheus exporter.
//
// Emitter collects a Snapshot every interval after a fixed start delay,
// keeps the most recent ten in memory, and publishes each one on the
// "mirror/stats" topic by writing it into the state mirror — so both the
// downstream WebSocket hub and the REST API see it.
package stats
