package digest

import (
	"crypto/md5" //nolint:gosec // MD5 is the digest being inverted.
	"encoding/hex"
	"strings"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
)

// HexLen is the length of a hex-rendered MD5 digest.
const HexLen = 2 * md5.Size

// Target is a parsed target digest. Malformed input is kept verbatim and
// never matches any candidate.
type Target struct {
	raw   string
	sum   [md5.Size]byte
	valid bool
}

// ParseTarget parses a hex digest, case-insensitively.
func ParseTarget(raw string) Target {
	target := Target{raw: raw}

	if len(raw) != HexLen {
		return target
	}

	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return target
	}

	copy(target.sum[:], decoded)
	target.valid = true

	return target
}

// String returns the target as it was given.
func (t Target) String() string {
	return t.raw
}

// Valid reports whether the target is a well-formed MD5 hex digest.
func (t Target) Valid() bool {
	return t.valid
}

// Equal reports whether sum is the target digest.
func (t Target) Equal(sum [md5.Size]byte) bool {
	return t.valid && sum == t.sum
}

// Sum returns the lower-case hex MD5 digest of s in the given encoding.
func Sum(s string, enc Encoding) (string, error) {
	data, err := enc.Encode(s)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(data) //nolint:gosec // MD5 is the digest being inverted.

	return hex.EncodeToString(sum[:]), nil
}

// Comparator checks string candidates against hex targets.
type Comparator struct {
	enc Encoding
}

// NewComparator creates a Comparator hashing with enc.
func NewComparator(enc Encoding) *Comparator {
	return &Comparator{enc: enc}
}

// Matches reports whether the MD5 of candidate equals target, comparing hex
// case-insensitively. Encoding failures are returned, not swallowed.
func (c *Comparator) Matches(target, candidateText string) (bool, error) {
	sum, err := Sum(candidateText, c.enc)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(sum, target), nil
}

// Hasher checks enumerated candidates against one target. It keeps a reusable
// byte buffer, so each worker needs its own Hasher.
type Hasher struct {
	target    Target
	charset   candidate.Charset
	enc       Encoding
	table     [][]byte
	tableErrs []error
	buf       []byte
}

// NewHasher prepares a Hasher for candidates over cs. Stateless encodings have
// their symbols encoded once; a symbol that cannot be encoded only fails when
// a candidate containing it is checked.
func NewHasher(target Target, cs candidate.Charset, enc Encoding) *Hasher {
	hasher := &Hasher{target: target, charset: cs, enc: enc}

	if !enc.Stateless() {
		return hasher
	}

	hasher.table = make([][]byte, cs.Size())
	hasher.tableErrs = make([]error, cs.Size())

	for d := range cs.Size() {
		hasher.table[d], hasher.tableErrs[d] = enc.Encode(string(cs.Symbol(d)))
	}

	return hasher
}

// Check hashes c and reports whether it matches the target.
func (h *Hasher) Check(c candidate.Candidate) (bool, error) {
	data, err := h.encode(c)
	if err != nil {
		return false, err
	}

	return h.target.Equal(md5.Sum(data)), nil //nolint:gosec // MD5 is the digest being inverted.
}

// Encode renders c to bytes. The returned slice is reused by the next call.
func (h *Hasher) Encode(c candidate.Candidate) ([]byte, error) {
	return h.encode(c)
}

func (h *Hasher) encode(c candidate.Candidate) ([]byte, error) {
	if h.table == nil {
		return h.enc.Encode(h.charset.Format(c))
	}

	h.buf = h.buf[:0]

	for _, d := range c.Digits() {
		if h.tableErrs[d] != nil {
			// Re-encode the whole candidate so the error names it.
			_, err := h.enc.Encode(h.charset.Format(c))
			if err == nil {
				err = h.tableErrs[d]
			}

			return nil, err
		}

		h.buf = append(h.buf, h.table[d]...)
	}

	return h.buf, nil
}
