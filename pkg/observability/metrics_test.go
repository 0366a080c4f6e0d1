package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "md5_digest", observability.StatusOK, 10*time.Millisecond)
	red.RecordRequest(context.Background(), "md5_crack", observability.StatusError, time.Second)

	rm := collectMetrics(t, reader)

	requests := findMetric(rm, "crackfang.requests.total")
	require.NotNil(t, requests)
	assert.Equal(t, int64(2), sumInt64(t, requests))

	errs := findMetric(rm, "crackfang.errors.total")
	require.NotNil(t, errs)
	assert.Equal(t, int64(1), sumInt64(t, errs))

	assert.NotNil(t, findMetric(rm, "crackfang.request.duration.seconds"))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	done := red.TrackInflight(context.Background(), "md5_crack")

	inflight := findMetric(collectMetrics(t, reader), "crackfang.inflight.requests")
	require.NotNil(t, inflight)
	assert.Equal(t, int64(1), sumInt64(t, inflight))

	done()

	inflight = findMetric(collectMetrics(t, reader), "crackfang.inflight.requests")
	require.NotNil(t, inflight)
	assert.Equal(t, int64(0), sumInt64(t, inflight))
}

func TestSearchMetrics_RecordSearch(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	sm, err := observability.NewSearchMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()

	sm.RecordSearch(ctx, observability.SearchStats{
		Engine: "seq", Outcome: observability.OutcomeCracked, Examined: 6, Workers: 1, Duration: time.Millisecond,
	})
	sm.RecordSearch(ctx, observability.SearchStats{
		Engine: "seq", Outcome: observability.OutcomeNotFound, Examined: 7, Workers: 1, Duration: time.Millisecond,
	})

	rm := collectMetrics(t, reader)

	searches := findMetric(rm, "crackfang.search.total")
	require.NotNil(t, searches)
	assert.Equal(t, int64(2), sumInt64(t, searches))

	candidates := findMetric(rm, "crackfang.search.candidates.total")
	require.NotNil(t, candidates)
	assert.Equal(t, int64(13), sumInt64(t, candidates))

	assert.NotNil(t, findMetric(rm, "crackfang.search.duration.seconds"))
	assert.NotNil(t, findMetric(rm, "crackfang.search.workers"))
}

func TestSearchMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var sm *observability.SearchMetrics

	assert.NotPanics(t, func() {
		sm.RecordSearch(context.Background(), observability.SearchStats{Engine: "seq"})
	})
}
