package ledger

import (
	"fmt"
	"sync"
	"time"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for start times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger maps hashes to attempts for one run, preserving insertion order.
// Entries are never deleted.
type Ledger struct {
	now     func() time.Time
	entries map[string]*Attempt
	order   []string
	mu      sync.RWMutex
}

// New creates an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:     time.Now,
		entries: make(map[string]*Attempt),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Now returns the current time of the ledger's clock.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// RecordStart opens a not-cracked attempt for hash, started now. Starting a
// hash that is already present replaces its attempt in place.
func (l *Ledger) RecordStart(hash string) *Attempt {
	attempt := NewAttempt(hash, l.now())
	attempt.owner = l

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[hash]; !exists {
		l.order = append(l.order, hash)
	}

	l.entries[hash] = attempt

	return attempt
}

// RecordSuccess marks attempt cracked with password at end. The attempt must
// have been opened by l.
func (l *Ledger) RecordSuccess(attempt *Attempt, password string, end time.Time) error {
	if attempt.owner != l {
		return fmt.Errorf("%w: %s", ErrForeignAttempt, attempt.hash)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return attempt.Succeed(password, end)
}

// Get returns the attempt for hash.
func (l *Ledger) Get(hash string) (*Attempt, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	attempt, ok := l.entries[hash]

	return attempt, ok
}

// All returns every attempt in insertion order.
func (l *Ledger) All() []*Attempt {
	return l.filter(func(*Attempt) bool { return true })
}

// AllCracked returns the cracked attempts in insertion order.
func (l *Ledger) AllCracked() []*Attempt {
	return l.filter((*Attempt).Cracked)
}

// Len returns the number of hashes recorded.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.order)
}

func (l *Ledger) filter(keep func(*Attempt) bool) []*Attempt {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Attempt, 0, len(l.order))

	for _, hash := range l.order {
		attempt := l.entries[hash]
		if keep(attempt) {
			out = append(out, attempt)
		}
	}

	return out
}
