package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
)

// Sequential scans candidates one at a time in enumeration order, starting
// at a configurable candidate. It is deterministic and restartable.
type Sequential struct {
	charset   candidate.Charset
	enc       digest.Encoding
	start     candidate.Candidate
	logger    *slog.Logger
	now       func() time.Time
	maxLength int
}

// NewSequential creates a sequential engine. An invalid start candidate
// fails here, before any search.
func NewSequential(opts Options) (*Sequential, error) {
	opts = opts.withDefaults()

	validateErr := opts.validate()
	if validateErr != nil {
		return nil, validateErr
	}

	start, err := opts.startCandidate()
	if err != nil {
		return nil, err
	}

	return &Sequential{
		charset:   opts.Charset,
		enc:       opts.Encoding,
		start:     start,
		logger:    opts.Logger,
		now:       opts.Clock,
		maxLength: opts.MaxLength,
	}, nil
}

// Name implements Engine.
func (s *Sequential) Name() string {
	return NameSequential
}

// Search implements Engine.
func (s *Sequential) Search(ctx context.Context, target string, attempt *ledger.Attempt) (Stats, error) {
	hasher := digest.NewHasher(digest.ParseTarget(target), s.charset, s.enc)
	stats := Stats{Workers: 1}

	for c := s.start.Clone(); c.Len() <= s.maxLength; c.Increment() {
		if stats.Examined%ctxPollInterval == 0 && ctx.Err() != nil {
			return stats, interrupted(ctx)
		}

		ok, err := hasher.Check(c)
		stats.Examined++

		if err != nil {
			return stats, fmt.Errorf("hash %s: %w", target, err)
		}

		if ok {
			password := s.charset.Format(c)
			s.logger.Debug("match", "hash", target, "examined", stats.Examined)

			return stats, recordMatch(attempt, password, s.now)
		}
	}

	return stats, nil
}
