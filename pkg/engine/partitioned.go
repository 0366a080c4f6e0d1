package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
)

// searchState is shared by the workers of one Search call. The flag only
// ever goes from false to true, and the result cell is written at most once.
type searchState struct {
	result   atomic.Pointer[string]
	stop     atomic.Bool
	examined atomic.Uint64
}

// publish offers password as the result and raises the stop flag. It reports
// whether this call won the result cell.
func (s *searchState) publish(password string) bool {
	won := s.result.CompareAndSwap(nil, &password)
	s.stop.Store(true)

	return won
}

// Partitioned splits the domain into one contiguous block per worker and
// scans the blocks concurrently. The first worker to match wins; the others
// stop after finishing their current candidate.
type Partitioned struct {
	charset   candidate.Charset
	enc       digest.Encoding
	logger    *slog.Logger
	now       func() time.Time
	mode      PartitionMode
	maxLength int
	workers   int
}

// NewPartitioned creates a partitioned engine.
func NewPartitioned(opts Options) (*Partitioned, error) {
	opts = opts.withDefaults()

	validateErr := opts.validate()
	if validateErr != nil {
		return nil, validateErr
	}

	mode, err := ParsePartitionMode(string(opts.Partition))
	if err != nil {
		return nil, err
	}

	return &Partitioned{
		charset:   opts.Charset,
		enc:       opts.Encoding,
		logger:    opts.Logger,
		now:       opts.Clock,
		mode:      mode,
		maxLength: opts.MaxLength,
		workers:   opts.Workers,
	}, nil
}

// Name implements Engine.
func (p *Partitioned) Name() string {
	return NamePartitioned
}

// Search implements Engine.
func (p *Partitioned) Search(ctx context.Context, target string, attempt *ledger.Attempt) (Stats, error) {
	plan, err := NewPlan(p.charset.Size(), p.maxLength, p.workers, p.mode)
	if err != nil {
		return Stats{}, err
	}

	parsed := digest.ParseTarget(target)
	state := &searchState{}

	group, groupCtx := errgroup.WithContext(ctx)
	stopAfter := context.AfterFunc(groupCtx, func() { state.stop.Store(true) })

	for _, block := range plan.Blocks {
		start := plan.StartCandidate(p.charset, block)
		hasher := digest.NewHasher(parsed, p.charset, p.enc)

		group.Go(func() error {
			examined, workErr := p.work(hasher, start, block.Size, state)
			state.examined.Add(examined)

			if workErr != nil {
				return fmt.Errorf("hash %s: %w", target, workErr)
			}

			return nil
		})
	}

	waitErr := group.Wait()
	stopAfter()

	stats := Stats{Examined: state.examined.Load(), Workers: len(plan.Blocks)}

	if waitErr != nil {
		return stats, waitErr
	}

	if password := state.result.Load(); password != nil {
		p.logger.Debug("match", "hash", target, "examined", stats.Examined, "workers", stats.Workers)

		return stats, recordMatch(attempt, *password, p.now)
	}

	if ctx.Err() != nil {
		return stats, interrupted(ctx)
	}

	return stats, nil
}

// work scans one block. The stop flag is polled once per candidate, after its
// comparison, so a worker examines at most one candidate once the flag is set.
func (p *Partitioned) work(hasher *digest.Hasher, start candidate.Candidate, size uint64, state *searchState) (uint64, error) {
	var examined uint64

	for c := start; examined < size && c.Len() <= p.maxLength; c.Increment() {
		ok, err := hasher.Check(c)
		examined++

		if err != nil {
			state.stop.Store(true)

			return examined, err
		}

		if ok {
			state.publish(p.charset.Format(c))

			return examined, nil
		}

		if state.stop.Load() {
			return examined, nil
		}
	}

	return examined, nil
}
