package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes Prometheus metrics. The handler comes from the
// OpenTelemetry Prometheus exporter when available, falling back to the
// default registry otherwise.
func MetricsHandler(exporterHandler http.Handler) http.Handler {
	if exporterHandler != nil {
		return exporterHandler
	}
	return promhttp.Handler()
}
