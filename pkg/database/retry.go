package database

import "time"

// RetryPolicy describes a bounded exponential backoff schedule for connection
// attempts. Attempt numbering starts at 1.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryPolicy mirrors the historical 5-attempt, 3s-doubling schedule
// (3s, 6s, 12s, 24s between attempts).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialDelay: 3 * time.Second}
}

// Delay returns how long to wait after the given failed attempt, doubling each
// time. It returns 0 when the budget is exhausted and no retry should happen.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || attempt >= p.MaxAttempts {
		return 0
	}
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Exhausted reports whether the attempt budget is spent.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
