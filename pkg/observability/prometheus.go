package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusReader returns an OTel metric reader backed by a private
// Prometheus registry, and the handler that serves that registry. The
// registry also carries the Go runtime and process collectors.
func NewPrometheusReader() (sdkmetric.Reader, http.Handler, error) {
	registry := prometheus.NewRegistry()

	registerErr := registry.Register(collectors.NewGoCollector())
	if registerErr != nil {
		return nil, nil, fmt.Errorf("register go collector: %w", registerErr)
	}

	registerErr = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if registerErr != nil {
		return nil, nil, fmt.Errorf("register process collector: %w", registerErr)
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	return exporter, handler, nil
}
