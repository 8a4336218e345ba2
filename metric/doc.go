// Package metric provides Prometheus-based metrics collection and an optional
// standalone HTTP server for vhub observability.
//
// The package offers a centralized metrics registry managing both core hub
// metrics (session lifecycle, device registry size, pending-map depth,
// relay-store health) and custom component-specific metrics. The primary
// exposure path is a /metrics route mounted on the restapi router; Server in
// this package is only needed when metrics must be served on a separate port.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: hub-level metrics automatically registered (Metrics type)
//  2. Component Registry: extensible registration for component-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: optional standalone metrics endpoint with health check (Server type)
//
// This separates infrastructure concerns (core metrics) from
// application concerns (component-specific metrics) while providing a unified
// metrics endpoint for monitoring systems.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	coreMetrics := registry.CoreMetrics()
//
//	coreMetrics.RecordSessionOpened("device")
//	coreMetrics.RecordRegistrySize(devices.Len())
//	coreMetrics.RecordGetStreamWait(waitDuration)
//
// Mount registry.PrometheusRegistry() behind promhttp.HandlerFor on the
// restapi router's /metrics route, or use metric.NewServer for a standalone
// exporter listening on its own port.
//
// # Core Metrics
//
// The package automatically registers core hub metrics tracking:
//
//   - Session lifecycle: session_active{kind}, session_total{kind,outcome}
//   - Device registry: registry_size, registry_evictions_total, registry_conflicts_total
//   - Request correlation: pending_depth, stream_get_stream_wait_seconds, pending_timeouts_total
//   - Message flow: messages_received_total, messages_processed_total
//   - Snapshots: snapshot_written_total, snapshot_write_bytes_total
//   - Relay store: relay_store_up, relay_store_latency_seconds
//   - Error tracking and health: errors_total, health_status
//
// # Component-Specific Metrics
//
// Components can register custom metrics through the registry using the
// MetricsRegistrar interface, the same mechanism used internally for core
// metrics:
//
//	requestCounter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "relay_hook_calls_total",
//	    Help: "Total calls made to external relay hooks",
//	})
//	err := registry.RegisterCounter("relay", "hook_calls_total", requestCounter)
//
// # HTTP Server
//
// The standalone metrics server (when used) provides three endpoints:
//
//   - GET / - HTML page with links to metrics and health endpoints
//   - GET /metrics - Prometheus-formatted metrics (default path, configurable)
//   - GET /health - plain-text health check response
//
// # Prometheus Integration
//
// All core metrics use the namespace "vhub" and appropriate subsystems:
//   - vhub_session_active{kind="..."}
//   - vhub_registry_size
//   - vhub_stream_get_stream_wait_seconds
//
// Component-specific metrics use the metric name as provided during
// registration.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
//
// # Error Handling
//
// Registration methods return errors for duplicate registration and Prometheus
// internal conflicts. The Server.Start() method returns
// errors for an already-running server, a nil registry, or HTTP server
// failures (port in use, permission denied).
//
// # Design Decisions
//
// Centralized Registry: a single registry per process ensures a consistent
// metric namespace and prevents duplicate registration.
//
// Core vs Component Metrics: separated hub-level metrics (core) from
// component-specific metrics to distinguish infrastructure health from
// feature-level activity.
//
// Prometheus Direct Integration: uses the official Prometheus client rather
// than an abstraction layer, to stay compatible with the wider Prometheus
// ecosystem (alerting rules, Grafana dashboards) without a translation layer.
package metric
