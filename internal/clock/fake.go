package clock

import "time"

// FakeClock is a manually advanced Clock for tests that assert on issuance,
// capture and settlement timing without sleeping.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t (normalized to UTC, like every timestamp
// the ledger persists).
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward, e.g. past an invoice due date or into the
// next settlement period.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
