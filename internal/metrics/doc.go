// Package metrics scrapes a Prometheus text exposition endpoint (the
// server's exporter) and reduces it to per-family totals. The scraped gauges
// are folded into the mirror's stats snapshots.
package metrics
