package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
	"github.com/Sumatoshi-tech/crackfang/pkg/profiling"
)

const (
	metricsPath       = "/metrics"
	readHeaderTimeout = 5 * time.Second
)

// metricsServer serves the Prometheus scrape endpoint and pprof while a
// crack run is in progress.
type metricsServer struct {
	srv  *http.Server
	addr string
	done chan error
}

func startMetricsServer(
	addr string,
	metrics http.Handler,
	tracer trace.Tracer,
	red *observability.REDMetrics,
	logger *slog.Logger,
) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.HTTPMiddleware(tracer, red, metrics))
	profiling.RegisterPprof(mux)

	ms := &metricsServer{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout},
		addr: listener.Addr().String(),
		done: make(chan error, 1),
	}

	go func() {
		serveErr := ms.srv.Serve(listener)
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}

		ms.done <- serveErr
	}()

	logger.Info("metrics server listening", "addr", ms.addr, "path", metricsPath)

	return ms, nil
}

func (ms *metricsServer) Shutdown(ctx context.Context) error {
	shutdownErr := ms.srv.Shutdown(ctx)

	return errors.Join(shutdownErr, <-ms.done)
}
