package engine

import (
	"context"
	"crypto/md5" //nolint:gosec // MD5 is the digest being inverted.
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

// NotFound is the index a Device returns when no message in a batch matches.
const NotFound = -1

// lanePollInterval is how many messages a HostDevice lane hashes between
// checks of the shared minimum and the context.
const lanePollInterval = 256

// Batch is a run of encoded candidates with consecutive ranks.
type Batch struct {
	Messages [][]byte
}

// Len returns the number of messages in the batch.
func (b *Batch) Len() int {
	return len(b.Messages)
}

func (b *Batch) reset() {
	b.Messages = b.Messages[:0]
}

// add appends a copy of data, reusing a previously allocated slot when possible.
func (b *Batch) add(data []byte) {
	n := len(b.Messages)
	if n < cap(b.Messages) {
		b.Messages = b.Messages[:n+1]
		b.Messages[n] = append(b.Messages[n][:0], data...)

		return
	}

	b.Messages = append(b.Messages, append([]byte(nil), data...))
}

// Device compares batches of messages against a target digest.
// Find returns the lowest index whose MD5 equals target, or NotFound.
type Device interface {
	Name() string
	Find(ctx context.Context, target digest.Target, batch *Batch) (int, error)
}

// HostDevice is a Device that hashes a batch on the CPU, split across lanes.
type HostDevice struct {
	lanes int
}

// NewHostDevice creates a HostDevice with the given number of lanes.
// Zero or less selects GOMAXPROCS.
func NewHostDevice(lanes int) *HostDevice {
	if lanes < 1 {
		lanes = runtime.GOMAXPROCS(0)
	}

	return &HostDevice{lanes: lanes}
}

// Name implements Device.
func (d *HostDevice) Name() string {
	return fmt.Sprintf("host (%d lanes)", d.lanes)
}

// Find implements Device.
func (d *HostDevice) Find(ctx context.Context, target digest.Target, batch *Batch) (int, error) {
	total := batch.Len()
	if total == 0 {
		return NotFound, nil
	}

	lanes := min(d.lanes, total)
	chunk := (total + lanes - 1) / lanes

	var best atomic.Int64

	best.Store(math.MaxInt64)

	group, groupCtx := errgroup.WithContext(ctx)

	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)

		group.Go(func() error {
			for idx := lo; idx < hi; idx++ {
				if (idx-lo)%lanePollInterval == 0 {
					if int64(idx) >= best.Load() {
						return nil
					}

					if groupCtx.Err() != nil {
						return context.Cause(groupCtx)
					}
				}

				if target.Equal(md5.Sum(batch.Messages[idx])) { //nolint:gosec // MD5 is the digest being inverted.
					storeMin(&best, int64(idx))

					return nil
				}
			}

			return nil
		})
	}

	waitErr := group.Wait()

	found := best.Load()
	if found != math.MaxInt64 {
		return int(found), nil
	}

	if waitErr != nil {
		return NotFound, waitErr
	}

	return NotFound, nil
}

func storeMin(best *atomic.Int64, value int64) {
	for {
		current := best.Load()
		if value >= current || best.CompareAndSwap(current, value) {
			return
		}
	}
}

// Accelerator enumerates the sequential domain on the host in batches and
// offloads digest comparison to a Device. Because devices report the lowest
// matching index, it finds the same plaintext as the sequential engine.
type Accelerator struct {
	charset   candidate.Charset
	enc       digest.Encoding
	device    Device
	start     candidate.Candidate
	logger    *slog.Logger
	now       func() time.Time
	maxLength int
	batchSize int
}

// NewAccelerator creates an accelerator engine. Without a configured Device
// it uses a HostDevice with one lane per worker, or GOMAXPROCS lanes when a
// single worker is configured.
func NewAccelerator(opts Options) (*Accelerator, error) {
	opts = opts.withDefaults()

	validateErr := opts.validate()
	if validateErr != nil {
		return nil, validateErr
	}

	start, err := opts.startCandidate()
	if err != nil {
		return nil, err
	}

	device := opts.Device
	if device == nil {
		lanes := opts.Workers
		if lanes == 1 {
			lanes = 0
		}

		device = NewHostDevice(lanes)
	}

	return &Accelerator{
		charset:   opts.Charset,
		enc:       opts.Encoding,
		device:    device,
		start:     start,
		logger:    opts.Logger,
		now:       opts.Clock,
		maxLength: opts.MaxLength,
		batchSize: opts.BatchSize,
	}, nil
}

// Name implements Engine.
func (a *Accelerator) Name() string {
	return NameAccelerator
}

// Device returns the device batches are offloaded to.
func (a *Accelerator) Device() Device {
	return a.device
}

// Search implements Engine.
func (a *Accelerator) Search(ctx context.Context, target string, attempt *ledger.Attempt) (Stats, error) {
	rank, err := a.charset.Rank(a.start)
	if err != nil {
		return Stats{}, fmt.Errorf("start-at rank: %w", err)
	}

	parsed := digest.ParseTarget(target)
	hasher := digest.NewHasher(parsed, a.charset, a.enc)
	batch := &Batch{Messages: make([][]byte, 0, a.batchSize)}
	stats := Stats{Workers: 1}

	for c := a.start.Clone(); c.Len() <= a.maxLength; {
		if ctx.Err() != nil {
			return stats, interrupted(ctx)
		}

		batchRank := rank

		fillErr := a.fill(batch, hasher, &c)
		rank += safeconv.MustIntToUint64(batch.Len())

		idx, findErr := a.device.Find(ctx, parsed, batch)
		if findErr != nil {
			return stats, fmt.Errorf("device %s: %w", a.device.Name(), findErr)
		}

		if idx != NotFound {
			stats.Examined += safeconv.MustIntToUint64(idx) + 1
			password := a.charset.Format(a.charset.FromRank(batchRank + safeconv.MustIntToUint64(idx)))
			a.logger.Debug("match", "hash", target, "examined", stats.Examined, "device", a.device.Name())

			return stats, recordMatch(attempt, password, a.now)
		}

		stats.Examined += safeconv.MustIntToUint64(batch.Len())

		if fillErr != nil {
			// The failing candidate counts as examined, as in the sequential scan.
			stats.Examined++

			return stats, fmt.Errorf("hash %s: %w", target, fillErr)
		}
	}

	return stats, nil
}

// fill encodes up to batchSize candidates starting at c and advances c past
// them. On an encoding error the batch holds the candidates before the
// failing one, and c stays on it.
func (a *Accelerator) fill(batch *Batch, hasher *digest.Hasher, c *candidate.Candidate) error {
	batch.reset()

	for batch.Len() < a.batchSize && c.Len() <= a.maxLength {
		data, err := hasher.Encode(*c)
		if err != nil {
			return err
		}

		batch.add(data)
		c.Increment()
	}

	return nil
}
