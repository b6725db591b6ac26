// Package metrics defines the Prometheus metrics exported by the tidy
// pipeline and browsing API. Metrics are registered at init time via
// promauto and exposed on /metrics by the serve command.
package metrics
