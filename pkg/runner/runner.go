// Package runner drives an engine over a list of target hashes, one search
// at a time, recording every attempt in a ledger.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
	"github.com/Sumatoshi-tech/crackfang/pkg/observability"
	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

// SpanSearch is the name of the span wrapping one hash search.
const SpanSearch = "crackfang.search"

// ErrNoEngine is returned when a Runner is built without an engine.
var ErrNoEngine = errors.New("runner requires an engine")

// Config configures a Runner. Only Engine is required.
type Config struct {
	Engine  engine.Engine
	Ledger  *ledger.Ledger
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.SearchMetrics

	// RunID tags the spans and logs of every search. Empty generates a
	// time-ordered UUID per Run call.
	RunID string

	// OnStart is called before each search.
	OnStart func(hash string)
	// OnResult is called after each search, including failed ones.
	OnResult func(Result)

	// StopOnError aborts the run on the first failed search. Otherwise the
	// failure is logged and the next hash proceeds.
	StopOnError bool
}

// Result is the outcome of one hash search.
type Result struct {
	Attempt  *ledger.Attempt
	Err      error
	Stats    engine.Stats
	Duration time.Duration
}

// Outcome classifies the result for metrics and spans.
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return observability.OutcomeError
	case r.Attempt.Cracked():
		return observability.OutcomeCracked
	default:
		return observability.OutcomeNotFound
	}
}

// Outcome is the result of a whole run.
type Outcome struct {
	RunID    string
	Engine   string
	Results  []Result
	Examined uint64
	Duration time.Duration
}

// Cracked returns how many searches recovered a password.
func (o Outcome) Cracked() int {
	var n int

	for _, res := range o.Results {
		if res.Err == nil && res.Attempt.Cracked() {
			n++
		}
	}

	return n
}

// Failed returns how many searches ended in an error.
func (o Outcome) Failed() int {
	var n int

	for _, res := range o.Results {
		if res.Err != nil {
			n++
		}
	}

	return n
}

// HashRate returns candidates examined per second over the whole run.
func (o Outcome) HashRate() float64 {
	if o.Duration <= 0 {
		return 0
	}

	return float64(o.Examined) / o.Duration.Seconds()
}

// Runner processes hashes sequentially with one engine.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Engine == nil {
		return nil, ErrNoEngine
	}

	if cfg.Ledger == nil {
		cfg.Ledger = ledger.New()
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Tracer == nil {
		cfg.Tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return &Runner{cfg: cfg}, nil
}

// Ledger returns the ledger attempts are recorded in.
func (r *Runner) Ledger() *ledger.Ledger {
	return r.cfg.Ledger
}

// Run searches each hash in order. Cancellation of ctx always ends the run;
// other search errors end it only with StopOnError. The returned Outcome
// covers every search that was started.
func (r *Runner) Run(ctx context.Context, hashes []string) (Outcome, error) {
	runID := r.cfg.RunID
	if runID == "" {
		runID = uuid.Must(uuid.NewV7()).String()
	}

	outcome := Outcome{RunID: runID, Engine: r.cfg.Engine.Name(), Results: make([]Result, 0, len(hashes))}
	logger := r.cfg.Logger.With("run_id", runID)
	started := time.Now()

	for _, hash := range hashes {
		if ctx.Err() != nil {
			outcome.Duration = time.Since(started)

			return outcome, fmt.Errorf("run interrupted: %w", context.Cause(ctx))
		}

		res := r.search(ctx, logger, runID, hash)
		outcome.Results = append(outcome.Results, res)
		outcome.Examined += res.Stats.Examined

		if r.cfg.OnResult != nil {
			r.cfg.OnResult(res)
		}

		if res.Err == nil {
			continue
		}

		if ctx.Err() != nil || r.cfg.StopOnError {
			outcome.Duration = time.Since(started)

			return outcome, res.Err
		}

		logger.WarnContext(ctx, "search failed, continuing", "hash", hash, "error", res.Err)
	}

	outcome.Duration = time.Since(started)

	return outcome, nil
}

func (r *Runner) search(ctx context.Context, logger *slog.Logger, runID, hash string) Result {
	if r.cfg.OnStart != nil {
		r.cfg.OnStart(hash)
	}

	ctx, span := r.cfg.Tracer.Start(ctx, SpanSearch, trace.WithAttributes(
		attribute.String("crackfang.run_id", runID),
		attribute.String("crackfang.hash", hash),
		attribute.String("crackfang.engine", r.cfg.Engine.Name()),
	))
	defer span.End()

	attempt := r.cfg.Ledger.RecordStart(hash)
	started := time.Now()

	stats, err := r.cfg.Engine.Search(ctx, hash, attempt)

	res := Result{Attempt: attempt, Err: err, Stats: stats, Duration: time.Since(started)}
	outcome := res.Outcome()

	span.SetAttributes(
		attribute.String("crackfang.outcome", outcome),
		attribute.Int64("crackfang.examined", safeconv.ClampUint64ToInt64(stats.Examined)),
		attribute.Int("crackfang.workers", stats.Workers),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	r.cfg.Metrics.RecordSearch(ctx, observability.SearchStats{
		Engine:   r.cfg.Engine.Name(),
		Outcome:  outcome,
		Duration: res.Duration,
		Examined: stats.Examined,
		Workers:  stats.Workers,
	})

	logger.DebugContext(ctx, "search finished",
		"hash", hash, "outcome", outcome, "examined", stats.Examined, "duration", res.Duration)

	return res
}
