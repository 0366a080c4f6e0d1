package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
)

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) ledger.Option {
	return ledger.WithClock(func() time.Time { return at })
}

func TestAttempt_NotCracked(t *testing.T) {
	t.Parallel()

	attempt := ledger.NewAttempt("abc", epoch)

	assert.False(t, attempt.Cracked())
	assert.Equal(t, ledger.UnknownPassword, attempt.String())

	_, ok := attempt.Password()
	assert.False(t, ok)

	_, ok = attempt.End()
	assert.False(t, ok)

	_, err := attempt.Elapsed()
	require.ErrorIs(t, err, ledger.ErrNotCracked)

	_, err = attempt.ElapsedString()
	require.ErrorIs(t, err, ledger.ErrNotCracked)
}

func TestAttempt_Succeed(t *testing.T) {
	t.Parallel()

	attempt := ledger.NewAttempt("abc", epoch)

	require.NoError(t, attempt.Succeed("ba", epoch.Add(1500*time.Millisecond)))

	password, ok := attempt.Password()
	assert.True(t, ok)
	assert.Equal(t, "ba", password)
	assert.Equal(t, "ba", attempt.String())

	elapsed, err := attempt.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, elapsed)

	text, err := attempt.ElapsedString()
	require.NoError(t, err)
	assert.Equal(t, "1.50 s", text)

	err = attempt.Succeed("other", epoch)
	require.ErrorIs(t, err, ledger.ErrAlreadyCracked)

	password, _ = attempt.Password()
	assert.Equal(t, "ba", password)
}

func TestAttempt_EmptyPasswordIsCracked(t *testing.T) {
	t.Parallel()

	attempt := ledger.NewAttempt("d41d8cd98f00b204e9800998ecf8427e", epoch)
	require.NoError(t, attempt.Succeed("", epoch))

	assert.True(t, attempt.Cracked())
	assert.Empty(t, attempt.String())
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "0 μs"},
		{"micros", 250 * time.Microsecond, "250 μs"},
		{"millis", 42 * time.Millisecond, "42 ms"},
		{"seconds", 3250 * time.Millisecond, "3.25 s"},
		{"minutes", 2*time.Minute + 5*time.Second, "0 h 2 m 5.00 s"},
		{"hours", time.Hour + 30*time.Minute + 1500*time.Millisecond, "1 h 30 m 1.50 s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ledger.FormatElapsed(tt.in))
		})
	}
}

func TestLedger_OrderAndReplace(t *testing.T) {
	t.Parallel()

	led := ledger.New(fixedClock(epoch))

	first := led.RecordStart("h1")
	led.RecordStart("h2")
	require.NoError(t, led.RecordSuccess(first, "pw", epoch))

	replaced := led.RecordStart("h1")
	assert.False(t, replaced.Cracked())
	assert.Equal(t, 2, led.Len())

	all := led.All()
	require.Len(t, all, 2)
	assert.Equal(t, "h1", all[0].Hash())
	assert.Equal(t, "h2", all[1].Hash())

	got, ok := led.Get("h1")
	require.True(t, ok)
	assert.Same(t, replaced, got)

	_, ok = led.Get("missing")
	assert.False(t, ok)
}

func TestLedger_AllCracked(t *testing.T) {
	t.Parallel()

	led := ledger.New(fixedClock(epoch))

	a := led.RecordStart("h1")
	led.RecordStart("h2")
	c := led.RecordStart("h3")

	require.NoError(t, led.RecordSuccess(c, "x", epoch.Add(time.Second)))
	require.NoError(t, led.RecordSuccess(a, "y", epoch.Add(time.Second)))

	cracked := led.AllCracked()
	require.Len(t, cracked, 2)
	assert.Equal(t, "h1", cracked[0].Hash())
	assert.Equal(t, "h3", cracked[1].Hash())
	assert.Equal(t, epoch, cracked[0].Start())
}

func TestLedger_RecordSuccessRejectsForeignAttempt(t *testing.T) {
	t.Parallel()

	led := ledger.New(fixedClock(epoch))
	other := ledger.New(fixedClock(epoch))

	owned := led.RecordStart("h1")
	assert.Same(t, led, owned.Ledger())

	require.ErrorIs(t, other.RecordSuccess(owned, "pw", epoch), ledger.ErrForeignAttempt)
	require.ErrorIs(t, led.RecordSuccess(ledger.NewAttempt("h2", epoch), "pw", epoch), ledger.ErrForeignAttempt)
	assert.False(t, owned.Cracked())

	require.NoError(t, led.RecordSuccess(owned, "pw", epoch))
	require.ErrorIs(t, led.RecordSuccess(owned, "again", epoch), ledger.ErrAlreadyCracked)
}
