// Package safeconv provides integer conversions that clamp or panic instead
// of silently wrapping.
package safeconv

import "math"

// ClampUint64ToInt64 converts v to int64, saturating at math.MaxInt64.
// Counters exported to OpenTelemetry and humanize are int64.
func ClampUint64ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}

// MustIntToUint64 converts int to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}

// MustUint64ToInt converts uint64 to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUint64ToInt(v uint64) int {
	if v > uint64(math.MaxInt) {
		panic("safeconv: uint64 to int overflow")
	}

	return int(v)
}
