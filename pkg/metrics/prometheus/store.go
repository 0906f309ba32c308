package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/objectiveSquid/Chat-site/pkg/metrics"
)

// storeMetrics is the Prometheus implementation for database metrics.
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() *storeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatsite_store_operations_total",
				Help: "Total number of database operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "chatsite_store_operation_duration_milliseconds",
				Help: "Duration of database operations in milliseconds",
				Buckets: []float64{
					1,    // 1ms - indexed point lookups
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms - conversation scans
					100,  // 100ms
					500,  // 500ms
					1000, // 1s - full table scans
				},
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation records a store operation with its duration and outcome.
func (m *storeMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}
