// Package metric provides Prometheus metrics for configuration resolution.
//
// A MetricsRegistry wraps a private prometheus.Registry so multiple isolated
// containers (one per environment or tenant, or per test) never collide on
// metric names. The core Metrics track backend resolutions by resolver and
// outcome, resolution latency, validation failures and the number of
// declared variables. Caches register their own hit/miss counters through
// the MetricsRegistrar interface.
//
// The optional Server exposes a registry on an HTTP port for scraping.
package metric
