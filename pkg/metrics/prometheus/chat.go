// Package prometheus contains the Prometheus-backed implementations of the
// metrics interfaces. Constructors return nil when metrics are disabled and
// every recording method tolerates a nil receiver, so callers never branch
// on configuration.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/objectiveSquid/Chat-site/pkg/metrics"
)

// chatMetrics is the Prometheus implementation for chat session metrics.
type chatMetrics struct {
	sessionsStarted prometheus.Counter
	sessionsClosed  *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	authentications *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	packetsSent     *prometheus.CounterVec
	dispatchTotal   *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
}

// NewChatMetrics creates a new Prometheus-backed ChatMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewChatMetrics() *chatMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &chatMetrics{
		sessionsStarted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "chatsite_sessions_started_total",
				Help: "Total number of accepted client sessions",
			},
		),
		sessionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_sessions_closed_total",
				Help: "Total number of closed client sessions by close reason",
			},
			[]string{"reason"}, // "quit", "auth_failed", "auth_timeout", ...
		),
		sessionsActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "chatsite_sessions_active",
				Help: "Current number of connected client sessions",
			},
		),
		authentications: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_authentications_total",
				Help: "Total number of authentication attempts by outcome",
			},
			[]string{"outcome"}, // "accepted", "rejected"
		),
		packetsReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_packets_received_total",
				Help: "Total number of packets received by packet type",
			},
			[]string{"type"},
		),
		packetsSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_packets_sent_total",
				Help: "Total number of packets sent by packet type",
			},
			[]string{"type"},
		),
		dispatchTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_dispatch_total",
				Help: "Total number of dispatched requests by packet type and status",
			},
			[]string{"type", "status"},
		),
		dispatchLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "chatsite_dispatch_duration_milliseconds",
				Help: "Duration of request dispatch in milliseconds",
				Buckets: []float64{
					1,    // 1ms - in-memory lookups
					5,    // 5ms
					10,   // 10ms - single database roundtrip
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - large history reads
					1000, // 1s
					5000, // 5s - something is wrong
				},
			},
			[]string{"type"},
		),
	}
}

// RecordSessionStarted increments the accepted session counter.
func (m *chatMetrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// RecordSessionClosed records a session ending with the reason it closed.
func (m *chatMetrics) RecordSessionClosed(reason string) {
	if m == nil {
		return
	}
	m.sessionsClosed.WithLabelValues(reason).Inc()
}

// SetActiveSessions updates the current session count.
func (m *chatMetrics) SetActiveSessions(count int32) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(count))
}

// RecordAuthentication records an authentication attempt outcome.
func (m *chatMetrics) RecordAuthentication(outcome string) {
	if m == nil {
		return
	}
	m.authentications.WithLabelValues(outcome).Inc()
}

// RecordPacketReceived increments the inbound packet counter.
func (m *chatMetrics) RecordPacketReceived(packetType string) {
	if m == nil {
		return
	}
	m.packetsReceived.WithLabelValues(packetType).Inc()
}

// RecordPacketSent increments the outbound packet counter.
func (m *chatMetrics) RecordPacketSent(packetType string) {
	if m == nil {
		return
	}
	m.packetsSent.WithLabelValues(packetType).Inc()
}

// ObserveDispatch records a completed request dispatch.
func (m *chatMetrics) ObserveDispatch(packetType string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.dispatchTotal.WithLabelValues(packetType, status).Inc()
	m.dispatchLatency.WithLabelValues(packetType).Observe(duration.Seconds() * 1000)
}
