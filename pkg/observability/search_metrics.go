package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

const (
	metricSearchTotal     = "crackfang.search.total"
	metricCandidatesTotal = "crackfang.search.candidates.total"
	metricSearchDuration  = "crackfang.search.duration.seconds"
	metricSearchWorkers   = "crackfang.search.workers"

	attrEngine  = "engine"
	attrOutcome = "outcome"
)

// Search outcomes.
const (
	OutcomeCracked  = "cracked"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var searchBucketBoundaries = []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60, 600, 3600}

// SearchStats is what one finished hash search reports to SearchMetrics.
type SearchStats struct {
	Engine   string
	Outcome  string
	Duration time.Duration
	Examined uint64
	Workers  int
}

// SearchMetrics holds instruments describing hash searches.
type SearchMetrics struct {
	searchTotal     metric.Int64Counter
	candidatesTotal metric.Int64Counter
	duration        metric.Float64Histogram
	workers         metric.Int64Histogram
}

// NewSearchMetrics creates search instruments from mt.
func NewSearchMetrics(mt metric.Meter) (*SearchMetrics, error) {
	searchTotal, err := mt.Int64Counter(metricSearchTotal,
		metric.WithDescription("Hash searches by engine and outcome"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSearchTotal, err)
	}

	candidatesTotal, err := mt.Int64Counter(metricCandidatesTotal,
		metric.WithDescription("Candidates hashed and compared"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCandidatesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricSearchDuration,
		metric.WithDescription("Wall time of one hash search"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(searchBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSearchDuration, err)
	}

	workers, err := mt.Int64Histogram(metricSearchWorkers,
		metric.WithDescription("Workers spawned per hash search"),
		metric.WithUnit("{worker}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSearchWorkers, err)
	}

	return &SearchMetrics{
		searchTotal:     searchTotal,
		candidatesTotal: candidatesTotal,
		duration:        duration,
		workers:         workers,
	}, nil
}

// RecordSearch records one finished search. Nil receivers are a no-op.
func (sm *SearchMetrics) RecordSearch(ctx context.Context, stats SearchStats) {
	if sm == nil {
		return
	}

	engineAttr := attribute.String(attrEngine, stats.Engine)
	attrs := metric.WithAttributes(engineAttr, attribute.String(attrOutcome, stats.Outcome))

	sm.searchTotal.Add(ctx, 1, attrs)
	sm.duration.Record(ctx, stats.Duration.Seconds(), attrs)
	sm.candidatesTotal.Add(ctx, safeconv.ClampUint64ToInt64(stats.Examined), metric.WithAttributes(engineAttr))

	if stats.Workers > 0 {
		sm.workers.Record(ctx, int64(stats.Workers), metric.WithAttributes(engineAttr))
	}
}
