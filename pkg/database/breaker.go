package database

import (
	"sync"
	"time"
)

// CircuitBreaker gates connection attempts after repeated consecutive
// failures. It is independent of the retry policy: the policy decides how a
// single Connect call retries, the breaker decides whether a new Connect call
// may start at all.
type CircuitBreaker struct {
	mu           sync.Mutex
	threshold    int
	coolDown     time.Duration
	failures     int
	lastFailure  time.Time
	now          func() time.Time // injectable for tests
}

// NewCircuitBreaker creates a breaker that trips after threshold consecutive
// failures and stays open for coolDown.
func NewCircuitBreaker(threshold int, coolDown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		coolDown:  coolDown,
		now:       time.Now,
	}
}

// Allow reports whether a new connection attempt may proceed. When the
// cool-down has elapsed the failure counter resets and attempts resume.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	if b.now().Sub(b.lastFailure) > b.coolDown {
		b.failures = 0
		return true
	}
	return false
}

// RecordSuccess resets the consecutive-failure counter.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// RecordFailure counts a failed connection attempt.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
}

// Trip forces the breaker open, used for non-retryable failures.
func (b *CircuitBreaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = b.threshold
	b.lastFailure = b.now()
}

// Open reports whether the breaker is currently gating attempts.
func (b *CircuitBreaker) Open() bool {
	return !b.Allow()
}

// ConsecutiveFailures returns the current failure count.
func (b *CircuitBreaker) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
