// Package candidate enumerates password candidates as mixed-radix digit
// sequences over an ordered symbol set.
//
// Candidates are ordered by bijective base-C numbering: the empty candidate
// has rank 0, candidates of one length precede all longer ones, and within a
// length the rightmost digit varies fastest.
package candidate

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Sentinel errors.
var (
	// ErrEmptyCharset indicates a charset without symbols.
	ErrEmptyCharset = errors.New("charset must contain at least one symbol")
	// ErrUnknownSymbol indicates a string symbol that is absent from the charset.
	ErrUnknownSymbol = errors.New("symbol not in charset")
	// ErrDomainOverflow indicates rank arithmetic that does not fit in uint64.
	ErrDomainOverflow = errors.New("search domain exceeds uint64 range")
)

// Charset is an ordered symbol set. A symbol's position is its digit value.
type Charset struct {
	symbols []rune
	index   map[rune]int
}

// NewCharset builds a Charset from the runes of symbols, in order.
// Duplicate symbols are not rejected; enumeration order is undefined for them.
func NewCharset(symbols string) (Charset, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return Charset{}, ErrEmptyCharset
	}

	index := make(map[rune]int, len(runes))

	for pos, sym := range runes {
		if _, seen := index[sym]; !seen {
			index[sym] = pos
		}
	}

	return Charset{symbols: runes, index: index}, nil
}

// Size returns the number of symbols (the radix C).
func (cs Charset) Size() int {
	return len(cs.symbols)
}

// Symbol returns the symbol for digit d.
func (cs Charset) Symbol(d int) rune {
	return cs.symbols[d]
}

// String returns the symbols in digit order.
func (cs Charset) String() string {
	return string(cs.symbols)
}

// Initial returns the empty candidate (rank 0).
func (cs Charset) Initial() Candidate {
	return Candidate{base: cs.Size()}
}

// FromString parses s into a candidate, one digit per rune.
func (cs Charset) FromString(s string) (Candidate, error) {
	digits := make([]int, 0, len(s))

	for offset, sym := range s {
		d, ok := cs.index[sym]
		if !ok {
			return Candidate{}, fmt.Errorf("%w: %q at offset %d", ErrUnknownSymbol, sym, offset)
		}

		digits = append(digits, d)
	}

	return Candidate{digits: digits, base: cs.Size()}, nil
}

// Format renders c as the concatenation of its symbols.
func (cs Charset) Format(c Candidate) string {
	var sb strings.Builder

	sb.Grow(len(c.digits))

	for _, d := range c.digits {
		sb.WriteRune(cs.symbols[d])
	}

	return sb.String()
}

// FromRank returns the candidate at the given rank of the bijective order.
func (cs Charset) FromRank(rank uint64) Candidate {
	base := uint64(cs.Size())

	var digits []int

	for rank > 0 {
		rank--
		digits = append(digits, int(rank%base))
		rank /= base
	}

	reverse(digits)

	return Candidate{digits: digits, base: cs.Size()}
}

// FromPositional converts n to its minimal positional base-C digits, without
// padding. Zero yields a single zero digit.
func (cs Charset) FromPositional(n uint64) Candidate {
	base := uint64(cs.Size())

	if n == 0 {
		return Candidate{digits: []int{0}, base: cs.Size()}
	}

	// Base 1 has no positional form; fall back to the bijective one.
	if base == 1 {
		return cs.FromRank(n)
	}

	var digits []int

	for n > 0 {
		digits = append(digits, int(n%base))
		n /= base
	}

	reverse(digits)

	return Candidate{digits: digits, base: cs.Size()}
}

// Rank returns the bijective rank of c.
func (cs Charset) Rank(c Candidate) (uint64, error) {
	base := uint64(cs.Size())

	var rank uint64

	for _, d := range c.digits {
		hi, lo := bits.Mul64(rank, base)
		if hi != 0 {
			return 0, ErrDomainOverflow
		}

		sum, carry := bits.Add64(lo, uint64(d)+1, 0)
		if carry != 0 {
			return 0, ErrDomainOverflow
		}

		rank = sum
	}

	return rank, nil
}

// Candidate is a digit sequence over a charset of a fixed radix.
// Each worker owns its own Candidate; it is not safe for concurrent use.
type Candidate struct {
	digits []int
	base   int
}

// Len returns the number of digits.
func (c Candidate) Len() int {
	return len(c.digits)
}

// Digits exposes the digit slice. Callers must not modify it.
func (c Candidate) Digits() []int {
	return c.digits
}

// Clone returns an independent copy of c.
func (c Candidate) Clone() Candidate {
	digits := make([]int, len(c.digits))
	copy(digits, c.digits)

	return Candidate{digits: digits, base: c.base}
}

// Increment advances c to the next candidate in place. A carry out of the
// leftmost digit grows the candidate by one digit, all zeros.
func (c *Candidate) Increment() {
	for pos := len(c.digits) - 1; pos >= 0; pos-- {
		c.digits[pos]++
		if c.digits[pos] < c.base {
			return
		}

		c.digits[pos] = 0
	}

	c.digits = append(c.digits, 0)
}

// DomainSize returns the number of candidates of length 0..maxLen,
// the geometric series sum of base^l.
func DomainSize(base, maxLen int) (uint64, error) {
	var (
		total uint64
		term  uint64 = 1
	)

	for length := 0; length <= maxLen; length++ {
		sum, carry := bits.Add64(total, term, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: base %d, length %d", ErrDomainOverflow, base, maxLen)
		}

		total = sum

		if length == maxLen {
			break
		}

		hi, lo := bits.Mul64(term, uint64(base))
		if hi != 0 {
			return 0, fmt.Errorf("%w: base %d, length %d", ErrDomainOverflow, base, maxLen)
		}

		term = lo
	}

	return total, nil
}

// FixedSpaceSize returns base^length, the number of candidates of exactly length digits.
func FixedSpaceSize(base, length int) (uint64, error) {
	var size uint64 = 1

	for range length {
		hi, lo := bits.Mul64(size, uint64(base))
		if hi != 0 {
			return 0, fmt.Errorf("%w: base %d, length %d", ErrDomainOverflow, base, length)
		}

		size = lo
	}

	return size, nil
}

func reverse(digits []int) {
	for left, right := 0, len(digits)-1; left < right; left, right = left+1, right-1 {
		digits[left], digits[right] = digits[right], digits[left]
	}
}
