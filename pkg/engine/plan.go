package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

// PartitionMode selects the domain the partitioned engine splits among workers.
type PartitionMode string

const (
	// PartitionBijective splits the sequential domain, every candidate of
	// length 0..max length, by bijective rank.
	PartitionBijective PartitionMode = "bijective"
	// PartitionFixed splits the C^max-length positional space. Block starts are
	// unpadded positional conversions of the block's first index, so the
	// union of blocks differs from the sequential domain.
	PartitionFixed PartitionMode = "fixed"
)

// ErrUnknownPartitionMode indicates an unsupported partition mode name.
var ErrUnknownPartitionMode = errors.New("unknown partition mode")

// ParsePartitionMode parses a partition mode name, case-insensitively.
// An empty name selects PartitionBijective.
func ParsePartitionMode(name string) (PartitionMode, error) {
	switch PartitionMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", PartitionBijective:
		return PartitionBijective, nil
	case PartitionFixed:
		return PartitionFixed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPartitionMode, name)
	}
}

// Block is one worker's contiguous share of the domain.
type Block struct {
	Start uint64
	Size  uint64
}

// Plan is the division of a domain of Total indices into blocks of at most
// BlockSize. Blocks are disjoint and their union is [0, Total).
type Plan struct {
	Mode      PartitionMode
	Blocks    []Block
	Total     uint64
	BlockSize uint64
}

// NewPlan splits the domain for base, maxLength and mode among workers.
// Blocks hold ceil(Total/workers) indices and the last one is clipped. In
// bijective mode no block starts at or beyond Total. In fixed mode only
// blocks starting beyond Total are dropped, so a block starting exactly at
// Total is kept with size zero.
func NewPlan(base, maxLength, workers int, mode PartitionMode) (Plan, error) {
	if workers < 1 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}

	if maxLength < 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidMaxLength, maxLength)
	}

	total, err := domainTotal(base, maxLength, mode)
	if err != nil {
		return Plan{}, err
	}

	count := safeconv.MustIntToUint64(workers)

	blockSize := total / count
	if total%count != 0 {
		blockSize++
	}

	plan := Plan{Mode: mode, Total: total, BlockSize: blockSize}

	for k := range count {
		start := k * blockSize
		if start > total || (start == total && mode != PartitionFixed) {
			break
		}

		plan.Blocks = append(plan.Blocks, Block{Start: start, Size: min(blockSize, total-start)})
	}

	return plan, nil
}

// StartCandidate returns the first candidate of block b under the plan's mode.
func (p Plan) StartCandidate(cs candidate.Charset, b Block) candidate.Candidate {
	if p.Mode == PartitionFixed {
		return cs.FromPositional(b.Start)
	}

	return cs.FromRank(b.Start)
}

func domainTotal(base, maxLength int, mode PartitionMode) (uint64, error) {
	switch mode {
	case PartitionBijective, "":
		return candidate.DomainSize(base, maxLength)
	case PartitionFixed:
		return candidate.FixedSpaceSize(base, maxLength)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPartitionMode, mode)
	}
}
