// Package ledger records per-hash crack attempts: when each search started,
// when it succeeded and which plaintext it recovered.
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// UnknownPassword is how an attempt without a recovered password renders.
const UnknownPassword = "<Unknown password>"

// Sentinel errors.
var (
	// ErrNotCracked is returned when elapsed time is requested for an attempt that did not succeed.
	ErrNotCracked = errors.New("password not cracked yet")
	// ErrAlreadyCracked is returned when success is recorded twice for one attempt.
	ErrAlreadyCracked = errors.New("attempt already cracked")
	// ErrForeignAttempt is returned when a ledger is asked to record success
	// for an attempt it did not open.
	ErrForeignAttempt = errors.New("attempt not recorded in this ledger")
)

// Attempt is the record of one search for one hash. End time and password
// are present iff the attempt is cracked. It is written by at most one
// engine and read after the search returns. Attempts opened by a Ledger are
// completed through Ledger.RecordSuccess.
type Attempt struct {
	start    time.Time
	end      time.Time
	owner    *Ledger
	hash     string
	password string
	cracked  bool
}

// NewAttempt creates a not-cracked attempt for hash started at start.
func NewAttempt(hash string, start time.Time) *Attempt {
	return &Attempt{hash: hash, start: start}
}

// Hash returns the target hash of the attempt.
func (a *Attempt) Hash() string {
	return a.hash
}

// Start returns when the search began.
func (a *Attempt) Start() time.Time {
	return a.start
}

// End returns when the password was found.
func (a *Attempt) End() (time.Time, bool) {
	return a.end, a.cracked
}

// Password returns the recovered plaintext.
func (a *Attempt) Password() (string, bool) {
	return a.password, a.cracked
}

// Cracked reports whether the search succeeded.
func (a *Attempt) Cracked() bool {
	return a.cracked
}

// Ledger returns the ledger that opened the attempt, or nil for an attempt
// created with NewAttempt.
func (a *Attempt) Ledger() *Ledger {
	return a.owner
}

// Succeed marks the attempt cracked with password, found at end.
func (a *Attempt) Succeed(password string, end time.Time) error {
	if a.cracked {
		return fmt.Errorf("%w: %s", ErrAlreadyCracked, a.hash)
	}

	a.cracked = true
	a.password = password
	a.end = end

	return nil
}

// Elapsed returns the time taken to crack the password.
func (a *Attempt) Elapsed() (time.Duration, error) {
	if !a.cracked {
		return 0, fmt.Errorf("%w: %s", ErrNotCracked, a.hash)
	}

	return a.end.Sub(a.start), nil
}

// ElapsedString renders the elapsed time with the most appropriate unit.
func (a *Attempt) ElapsedString() (string, error) {
	elapsed, err := a.Elapsed()
	if err != nil {
		return "", err
	}

	return FormatElapsed(elapsed), nil
}

// String returns the password, or [UnknownPassword] when not cracked.
func (a *Attempt) String() string {
	if !a.cracked {
		return UnknownPassword
	}

	return a.password
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// FormatElapsed renders d as microseconds below 1ms, milliseconds below 1s,
// seconds below a minute and "H h M m S.SS s" beyond.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d μs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%2.2f s", d.Seconds())
	}

	total := d.Seconds()
	hours := int(total / secondsPerHour)
	rest := total - float64(hours*secondsPerHour)
	minutes := int(rest / secondsPerMinute)
	seconds := rest - float64(minutes*secondsPerMinute)

	return fmt.Sprintf("%d h %d m %.2f s", hours, minutes, seconds)
}
