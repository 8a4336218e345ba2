package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all hub-level metrics surfaced on /metrics.
type Metrics struct {
	// Session metrics
	SessionsActive    *prometheus.GaugeVec
	SessionsTotal      *prometheus.CounterVec
	SessionStateDuration *prometheus.HistogramVec

	// Device registry metrics
	RegistrySize        prometheus.Gauge
	RegistryEvictions    prometheus.Counter
	RegistryConflicts    prometheus.Counter

	// Request correlation metrics
	PendingDepth       prometheus.Gauge
	GetStreamWait      prometheus.Histogram
	RequestTimeouts    *prometheus.CounterVec

	// Message metrics
	MessagesReceived   *prometheus.CounterVec
	MessagesProcessed  *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	HealthCheckStatus  *prometheus.GaugeVec

	// Snapshot metrics
	SnapshotsWritten   *prometheus.CounterVec
	SnapshotWriteBytes prometheus.Counter

	// Relay-store metrics
	RelayStoreUp       prometheus.Gauge
	RelayStoreLatency  prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all hub metrics registered
// under the vhub namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "vhub",
				Subsystem: "session",
				Name:      "active",
				Help:      "Active sessions by classification (client, device)",
			},
			[]string{"kind"},
		),

		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "session",
				Name:      "total",
				Help:      "Total sessions opened, by kind and terminal outcome",
			},
			[]string{"kind", "outcome"},
		),

		SessionStateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vhub",
				Subsystem: "session",
				Name:      "state_duration_seconds",
				Help:      "Time spent in each session state before transitioning",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"state"},
		),

		RegistrySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vhub",
				Subsystem: "registry",
				Name:      "size",
				Help:      "Number of devices currently registered",
			},
		),

		RegistryEvictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "registry",
				Name:      "evictions_total",
				Help:      "Total devices evicted by a conflicting re-registration",
			},
		),

		RegistryConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "registry",
				Name:      "conflicts_total",
				Help:      "Total registration attempts that found a serial already held",
			},
		),

		PendingDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vhub",
				Subsystem: "pending",
				Name:      "depth",
				Help:      "Total outstanding entries across all per-device pending-response maps",
			},
		),

		GetStreamWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "vhub",
				Subsystem: "stream",
				Name:      "get_stream_wait_seconds",
				Help:      "Time a client session spent waiting for a device's push-stream ack",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		RequestTimeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "pending",
				Name:      "timeouts_total",
				Help:      "Requests that timed out waiting on a pending-map entry, by message kind",
			},
			[]string{"kind"},
		),

		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of framed messages received",
			},
			[]string{"session_kind", "message_type"},
		),

		MessagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "messages",
				Name:      "processed_total",
				Help:      "Total number of framed messages processed",
			},
			[]string{"session_kind", "message_type", "status"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors, by component and class",
			},
			[]string{"component", "class"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "vhub",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),

		SnapshotsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "snapshot",
				Name:      "written_total",
				Help:      "Total snapshots written, by outcome",
			},
			[]string{"outcome"},
		),

		SnapshotWriteBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "vhub",
				Subsystem: "snapshot",
				Name:      "write_bytes_total",
				Help:      "Total bytes written across all snapshot uploads",
			},
		),

		RelayStoreUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vhub",
				Subsystem: "relay_store",
				Name:      "up",
				Help:      "Whether the relay-store backend (Redis) is reachable (0/1)",
			},
		),

		RelayStoreLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "vhub",
				Subsystem: "relay_store",
				Name:      "latency_seconds",
				Help:      "Round-trip latency of relay-store lookups",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// RecordSessionOpened increments the active-session gauge. The total counter
// is incremented on close, by RecordSessionClosed.
func (c *Metrics) RecordSessionOpened(kind string) {
	c.SessionsActive.WithLabelValues(kind).Inc()
}

// RecordSessionClosed decrements the active-session gauge and records the outcome.
func (c *Metrics) RecordSessionClosed(kind, outcome string) {
	c.SessionsActive.WithLabelValues(kind).Dec()
	c.SessionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordStateDuration records time spent in a session state.
func (c *Metrics) RecordStateDuration(state string, d time.Duration) {
	c.SessionStateDuration.WithLabelValues(state).Observe(d.Seconds())
}

// RecordRegistrySize sets the current registry size gauge.
func (c *Metrics) RecordRegistrySize(n int) {
	c.RegistrySize.Set(float64(n))
}

// RecordEviction increments the eviction counter.
func (c *Metrics) RecordEviction() {
	c.RegistryEvictions.Inc()
}

// RecordConflict increments the registration-conflict counter.
func (c *Metrics) RecordConflict() {
	c.RegistryConflicts.Inc()
}

// RecordPendingDepth sets the current pending-map depth gauge.
func (c *Metrics) RecordPendingDepth(n int) {
	c.PendingDepth.Set(float64(n))
}

// RecordGetStreamWait records how long a client waited for a device ack.
func (c *Metrics) RecordGetStreamWait(d time.Duration) {
	c.GetStreamWait.Observe(d.Seconds())
}

// RecordRequestTimeout increments the request-timeout counter for a message kind.
func (c *Metrics) RecordRequestTimeout(kind string) {
	c.RequestTimeouts.WithLabelValues(kind).Inc()
}

// RecordMessageReceived increments the received-message counter.
func (c *Metrics) RecordMessageReceived(sessionKind, messageType string) {
	c.MessagesReceived.WithLabelValues(sessionKind, messageType).Inc()
}

// RecordMessageProcessed increments the processed-message counter.
func (c *Metrics) RecordMessageProcessed(sessionKind, messageType, status string) {
	c.MessagesProcessed.WithLabelValues(sessionKind, messageType, status).Inc()
}

// RecordError increments the error counter for a component and class.
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordHealthStatus updates the health-check gauge for a component.
func (c *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(component).Set(value)
}

// RecordSnapshotWritten increments the snapshot counter and byte total on success.
func (c *Metrics) RecordSnapshotWritten(outcome string, bytesWritten int) {
	c.SnapshotsWritten.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.SnapshotWriteBytes.Add(float64(bytesWritten))
	}
}

// RecordRelayStoreUp updates the relay-store reachability gauge.
func (c *Metrics) RecordRelayStoreUp(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	c.RelayStoreUp.Set(value)
}

// RecordRelayStoreLatency records relay-store round-trip latency.
func (c *Metrics) RecordRelayStoreLatency(d time.Duration) {
	c.RelayStoreLatency.Observe(d.Seconds())
}
