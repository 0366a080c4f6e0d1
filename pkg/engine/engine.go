// Package engine searches the candidate domain for the plaintext of an MD5
// digest. Three engines share one contract: a single-goroutine sequential
// scan, a partitioned scan over concurrent workers, and a batched scan that
// offloads digest comparison to a Device.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
)

// Engine names, as printed in the run banner.
const (
	NameSequential  = "Single-core Password Cracker"
	NamePartitioned = "Multi-core Password Cracker"
	NameAccelerator = "GPU Password Cracker"
)

// Defaults.
const (
	DefaultMaxLength = 4
	DefaultWorkers   = 1
	DefaultBatchSize = 4096
)

// ctxPollInterval is how many candidates the sequential scan examines between
// context checks.
const ctxPollInterval = 1 << 12

// Sentinel errors.
var (
	// ErrInvalidMaxLength indicates a negative maximum candidate length.
	ErrInvalidMaxLength = errors.New("max length must be non-negative")
	// ErrInvalidWorkers indicates a worker count below one.
	ErrInvalidWorkers = errors.New("workers must be at least 1")
	// ErrInvalidBatchSize indicates an accelerator batch size below one.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)

// Engine searches for the plaintext of one target hash and records a match
// on the attempt. A search that exhausts the domain leaves the attempt not
// cracked and returns no error.
type Engine interface {
	Name() string
	Search(ctx context.Context, target string, attempt *ledger.Attempt) (Stats, error)
}

// Stats describes the work done by one Search call.
type Stats struct {
	Examined uint64
	Workers  int
}

// Options configures an engine.
type Options struct {
	Charset   candidate.Charset
	Encoding  digest.Encoding
	Logger    *slog.Logger
	Clock     func() time.Time
	Device    Device
	StartAt   string
	Partition PartitionMode
	MaxLength int
	Workers   int
	BatchSize int
	// Accelerate selects the accelerator engine regardless of Workers.
	Accelerate bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if o.Clock == nil {
		o.Clock = time.Now
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}

	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}

	if o.Partition == "" {
		o.Partition = PartitionBijective
	}

	return o
}

func (o Options) validate() error {
	if o.Charset.Size() == 0 {
		return candidate.ErrEmptyCharset
	}

	if o.MaxLength < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxLength, o.MaxLength)
	}

	if o.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, o.Workers)
	}

	if o.BatchSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, o.BatchSize)
	}

	_, err := ParsePartitionMode(string(o.Partition))

	return err
}

// New selects and builds an engine: the accelerator when Accelerate is set,
// the partitioned engine for more than one worker, the sequential one
// otherwise.
func New(opts Options) (Engine, error) {
	opts = opts.withDefaults()

	validateErr := opts.validate()
	if validateErr != nil {
		return nil, validateErr
	}

	switch {
	case opts.Accelerate:
		return NewAccelerator(opts)
	case opts.Workers > 1:
		if opts.StartAt != "" {
			opts.Logger.Warn("start-at is ignored by the partitioned engine", "start_at", opts.StartAt)
		}

		return NewPartitioned(opts)
	default:
		return NewSequential(opts)
	}
}

// startCandidate parses the configured start candidate.
func (o Options) startCandidate() (candidate.Candidate, error) {
	start, err := o.Charset.FromString(o.StartAt)
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("start-at %q: %w", o.StartAt, err)
	}

	return start, nil
}

// recordMatch writes a match into the ledger that opened attempt, or into the
// attempt itself when it is standalone.
func recordMatch(attempt *ledger.Attempt, password string, now func() time.Time) error {
	var succeedErr error

	if led := attempt.Ledger(); led != nil {
		succeedErr = led.RecordSuccess(attempt, password, now())
	} else {
		succeedErr = attempt.Succeed(password, now())
	}

	if succeedErr != nil {
		return fmt.Errorf("record match: %w", succeedErr)
	}

	return nil
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("search interrupted: %w", context.Cause(ctx))
}
