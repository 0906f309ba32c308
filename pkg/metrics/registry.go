// Package metrics provides Prometheus-based observability for the chat
// server. Collection is opt-in: call InitRegistry before constructing any
// metrics instance, otherwise constructors return nil and the nil-safe
// recording methods become no-ops.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/objectiveSquid/Chat-site/internal/logger"
)

var (
	// registry is the global Prometheus registry, nil until InitRegistry.
	registry *prometheus.Registry

	// enabled indicates whether metrics collection is active
	enabled bool
)

// InitRegistry creates the global metrics registry and enables collection.
// The registry includes the standard Go runtime and process collectors.
//
// Calling InitRegistry again replaces the registry, so tests can start from
// a clean slate.
func InitRegistry() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	enabled = true
}

// IsEnabled returns whether metrics collection is enabled.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the global registry for metric registration.
// Returns nil if InitRegistry has not been called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format. Returns a 503 handler if metrics are not enabled.
func Handler() http.Handler {
	if registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics collection is disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartServer exposes the registry over HTTP at addr (the /metrics path).
// Returns a shutdown function that stops the listener; the listener keeps
// serving until it is called.
//
// Returns an error if the address cannot be bound, so misconfiguration
// surfaces at startup rather than as a silently missing endpoint.
func StartServer(addr string) (shutdown func(context.Context) error, err error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logger.Err(err))
		}
	}()

	return server.Shutdown, nil
}
